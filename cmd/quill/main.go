package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"quill/internal/diag"
	"quill/internal/interp"
	qlog "quill/internal/log"
	"quill/internal/scenario"
	"quill/internal/trace"
	"quill/internal/util"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// config
	configFile string
	// logging
	logLevel string
	logFile  string
	// call journal
	traceDriver string
	traceDSN    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Config file path (default ./"+util.DefaultConfigFile+" if present)")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// journal config
	flag.StringVar(&traceDriver, "trace-driver", "", "Call journal driver: sqlite3, mysql, postgres")
	flag.StringVar(&traceDSN, "trace-dsn", "", "Call journal data source name")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return 0
	}
	if help || flag.NArg() == 0 {
		printHelp()
		if help {
			return 0
		}
		return 2
	}

	config, err := util.LoadConfig(configFile, configFile != "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	config.Version, config.BuildDate, config.Commit = Version, BuildDate, Commit
	applyFlags(&config)

	logger, logCloser, err := qlog.Setup(config.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
		logger, logCloser, _ = qlog.Setup(config.LogLevel, "")
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	journal, err := openJournal(config.Trace)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer journal.Close()

	doc, err := scenario.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	sink := diag.NewFormatter(os.Stderr, doc.Path, doc.Src)
	in := interp.New(sink, journal)

	outcomes, err := in.RunProgram(doc.Program)
	if err != nil {
		if de, ok := diag.AsError(err); ok {
			sink.Report(de)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 2
	}

	return printOutcomes(os.Stdout, outcomes)
}

func applyFlags(config *util.Configuration) {
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if traceDriver != "" {
		config.Trace.Driver = traceDriver
	}
	if traceDSN != "" {
		config.Trace.DSN = traceDSN
	}
}

func openJournal(tc util.TraceConfig) (trace.Journal, error) {
	if tc.Driver == "" {
		return trace.Nop{}, nil
	}
	j, err := trace.Open(tc.Driver, tc.DSN)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// printOutcomes writes one line per top-level call and returns the status of
// the last one.
func printOutcomes(w io.Writer, outcomes []interp.Outcome) int {
	status := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(w, "%s => error (status %d)\n", o.Stmt.String(), o.Status)
		case o.Value != nil:
			fmt.Fprintf(w, "%s => %s\n", o.Stmt.String(), o.Value.Inspect())
		default:
			fmt.Fprintf(w, "%s => status %d\n", o.Stmt.String(), o.Status)
		}
		status = o.Status
	}
	return status
}

func printVersion() {
	fmt.Printf("quill version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: quill [options] scenario.yaml

Options:
  -config <path>        Read settings from a TOML file. Default is ./%s when present.
  -log-level <level>    Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.
  -trace-driver <name>  Record every call in a journal: sqlite3, mysql or postgres.
  -trace-dsn <dsn>      Data source name for the journal.
  -help                 Display this help information and exit.
  -version              Display version information and exit.

Details:
Quill loads the funcs and procs declared in a scenario file, runs its calls
in order and prints each outcome. The exit status is the status of the last
call.

Examples:
  quill calls.yaml
  quill -log-level=debug calls.yaml
  quill -trace-driver=sqlite3 -trace-dsn=calls.db calls.yaml

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.DefaultConfigFile, Version, BuildDate, Commit)
}
