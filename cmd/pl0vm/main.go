// Command pl0vm executes a three-address code listing produced by pl0c.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"plzero/pkg/config"
	"plzero/pkg/tac"
	"plzero/pkg/vm"
)

const usage = `usage: pl0vm [flags] <tac-file>

Runs a three-address code listing. Program output goes to standard
output; everything else (trace, stats, diagnostics) goes to stderr.

flags:
  -config path      read settings from a TOML file
  -trace            log every executed instruction
  -trace-file path  write the trace to a file as well as stderr
  -stats            report the executed instruction count after the run
`

func main() {
	configPath := flag.String("config", "", "TOML config file")
	trace := flag.Bool("trace", false, "per-instruction trace")
	traceFile := flag.String("trace-file", "", "trace log file")
	stats := flag.Bool("stats", false, "report instruction count")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pl0vm:", err)
			os.Exit(1)
		}
	}
	if cfg.Trace {
		*trace = true
	}
	if *traceFile == "" {
		*traceFile = cfg.TraceFile
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "pl0vm:", err)
		os.Exit(1)
	}
	prog, err := tac.Parse(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pl0vm: %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	opts := []vm.Option{vm.WithLimits(cfg.VM)}
	logger, closeTrace, err := traceLogger(*trace, *traceFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pl0vm:", err)
		os.Exit(1)
	}
	if logger != nil {
		opts = append(opts, vm.WithLogger(logger))
	}

	m, err := vm.New(prog, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "runtime error:", err)
		os.Exit(1)
	}
	runErr := m.Run()
	if closeTrace != nil {
		closeTrace()
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "runtime error:", runErr)
		os.Exit(1)
	}
	if *stats {
		fmt.Fprintf(os.Stderr, "pl0vm: executed %d instructions\n", m.Steps())
	}
}

// traceLogger builds the execution trace logger. With a trace file the
// log fans out to stderr and the file; with nothing requested it
// returns nil and the machine stays silent.
func traceLogger(trace bool, traceFile string) (*slog.Logger, func(), error) {
	if !trace && traceFile == "" {
		return nil, nil, nil
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	var closeFn func()
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closeFn = func() { f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
