/*
PURPOSE:
  Writes the launch plan (parsed arguments) for the external launcher.
  YAML for people, JSON for scripts.

REQUIREMENTS:
  User-specified:
  - Server options must reach the launcher exactly as typed.

  Implementation-discovered:
  - One document per invocation; JSON is a single line so it can be piped.
  - Both encoders share one interface so the engine does not care.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.ParsedArguments

ERROR HANDLING:
  - Returns error on unknown format or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder and yaml.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewPlanWriter("yaml", os.Stdout)
  w.Write(parsed)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Keep field names stable; the launcher depends on them.
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/y2start/internal/model"
)

// PlanWriter encodes launch plans.
type PlanWriter interface {
	Write(p *model.ParsedArguments) error
	Close() error
}

// NewPlanWriter returns a writer for format ("yaml" or "json") on w.
func NewPlanWriter(format string, w io.Writer) (PlanWriter, error) {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &YAMLWriter{encoder: enc}, nil
	case "json":
		return &JSONWriter{encoder: json.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unknown plan format %q", format)
}

// JSONWriter writes each plan as a JSON line.
type JSONWriter struct {
	encoder *json.Encoder
	mu      sync.Mutex
}

// Write writes a single plan as a JSON line.
func (jw *JSONWriter) Write(p *model.ParsedArguments) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(p)
}

// Close is a no-op; the underlying writer belongs to the caller.
func (jw *JSONWriter) Close() error {
	return nil
}

// YAMLWriter writes each plan as a YAML document.
type YAMLWriter struct {
	encoder *yaml.Encoder
	mu      sync.Mutex
}

// Write writes a single plan as a YAML document.
func (yw *YAMLWriter) Write(p *model.ParsedArguments) error {
	yw.mu.Lock()
	defer yw.mu.Unlock()

	return yw.encoder.Encode(p)
}

// Close flushes the encoder.
func (yw *YAMLWriter) Close() error {
	yw.mu.Lock()
	defer yw.mu.Unlock()

	return yw.encoder.Close()
}
