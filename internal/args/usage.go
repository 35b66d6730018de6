package args

// Usage returns the help text printed for -h/--help and after argument errors.
func Usage() string {
	return "Usage: y2start [GenericOpts] Client [ClientOpts] Server " +
		"[Specific ServerOpts]\n" +
		"\n" +
		"GenericOptions are:\n" +
		"    -h --help         : Print this help\n" +
		"\n" +
		"ClientOptions are:\n" +
		"    -a --arg          : add argument for client. Can be used multiple times.\n" +
		"\n" +
		"Specific ServerOptions are any options passed on unevaluated.\n" +
		"\n" +
		"Examples:\n" +
		"y2start installation qt\n" +
		"    Start binary y2start with installation as client and qt as server\n" +
		"y2start installation -a initial qt\n" +
		"    Provide parameter initial for client installation\n" +
		"y2start installation qt -geometry 800x600\n" +
		"    Provide geometry information as specific server options\n"
}
