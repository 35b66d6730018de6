package signals

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"
)

// blockTimeLayout matches the timestamp written on the delimiter line.
const blockTimeLayout = "2006-01-02 15:04:05 -0700"

// formatBlock renders one incident: delimiter with timestamp, the signal
// line, a header, then the stack dump one line per frame line.
func formatBlock(at time.Time, name string, stack []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "=== %s ===\n", at.Format(blockTimeLayout))
	fmt.Fprintf(&b, "YaST got signal %s.\n", name)
	b.WriteString("Backtrace (goroutine dump):\n")
	sc := bufio.NewScanner(bytes.NewReader(stack))
	sc.Buffer(make([]byte, 0, 64*1024), len(stack)+1)
	for sc.Scan() {
		line := bytes.TrimRight(sc.Bytes(), " \t")
		if len(line) == 0 {
			continue
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// appendFirst appends block to the first location that can be opened and
// written, returning the path used. Failing locations are skipped; the
// returned error joins every failure and is only non-nil when all failed.
func appendFirst(locations []string, block []byte) (string, error) {
	var errs []error
	for _, path := range locations {
		if err := appendFile(path, block); err != nil {
			errs = append(errs, err)
			continue
		}
		return path, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no log locations")
	}
	return "", errors.Join(errs...)
}

func appendFile(path string, block []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(block); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
