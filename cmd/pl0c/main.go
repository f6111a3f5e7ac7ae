// Command pl0c compiles a PL/0 source file and writes every stage's
// artifact to its own file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"plzero/pkg/compiler"
	"plzero/pkg/config"
)

const usage = `usage: pl0c [flags] <source> <tokens> <tokens.json> <ast> <symbols> <tac>

Compiles a PL/0 source file and writes six artifacts:
  <tokens>       token stream, one source line per output line
  <tokens.json>  tokens annotated with line and column, as JSON
  <ast>          indented syntax tree
  <symbols>      declared names with kind, level and payload
  <tac>          three-address code listing for pl0vm

flags:
  -config path      read settings from a TOML file
  -trace            log each pipeline stage at debug level
  -trace-file path  write the log to a file as well as stderr
`

func main() {
	configPath := flag.String("config", "", "TOML config file")
	trace := flag.Bool("trace", false, "debug logging")
	traceFile := flag.String("trace-file", "", "log file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 6 {
		flag.Usage()
		os.Exit(2)
	}
	srcPath := flag.Arg(0)
	outs := [5]string{flag.Arg(1), flag.Arg(2), flag.Arg(3), flag.Arg(4), flag.Arg(5)}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pl0c:", err)
			os.Exit(1)
		}
	}
	if cfg.Trace {
		*trace = true
	}
	if *traceFile == "" {
		*traceFile = cfg.TraceFile
	}

	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	logger, closeLog, err := newLogger(level, *traceFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pl0c:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		closeLog()
		fmt.Fprintln(os.Stderr, "pl0c:", err)
		os.Exit(1)
	}

	logger.Debug("compiling", slog.String("source", srcPath))
	art, cerr := compiler.Compile(string(data))

	if err := writeArtifacts(art, outs); err != nil {
		closeLog()
		fmt.Fprintln(os.Stderr, "pl0c:", err)
		os.Exit(1)
	}

	if cerr != nil {
		if lexErrs := compiler.LexErrors(art.Tokens); len(lexErrs) > 0 {
			for _, lexErr := range lexErrs {
				logger.Warn(lexErr.Message,
					slog.Int("line", lexErr.Line),
					slog.Int("col", lexErr.Col))
			}
			fmt.Fprintf(os.Stderr, "pl0c: %d lexical error(s) in %s\n", len(lexErrs), srcPath)
		} else {
			fmt.Fprintln(os.Stderr, cerr)
		}
		closeLog()
		os.Exit(1)
	}

	logger.Debug("compiled",
		slog.Int("tokens", len(art.Tokens)),
		slog.Int("instructions", len(art.TAC.Instrs)))
	closeLog()
}

// newLogger builds the stage logger. With a trace file the log fans out
// to stderr and the file; the file always records at debug level.
func newLogger(level slog.Level, traceFile string) (*slog.Logger, func(), error) {
	stderr := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if traceFile == "" {
		return slog.New(stderr), func() {}, nil
	}
	f, err := os.Create(traceFile)
	if err != nil {
		return nil, nil, err
	}
	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(stderr, file)), func() { f.Close() }, nil
}

// writeArtifacts dumps every stage that completed. On a failed compile
// the later paths are left unwritten.
func writeArtifacts(art *compiler.Artifacts, outs [5]string) error {
	if err := writeFile(outs[0], func(w io.Writer) error {
		_, err := compiler.WriteTokens(w, art.Tokens)
		return err
	}); err != nil {
		return err
	}
	if err := writeFile(outs[1], func(w io.Writer) error {
		return compiler.WriteTokensJSON(w, art.Tokens)
	}); err != nil {
		return err
	}
	if art.Program != nil {
		if err := writeFile(outs[2], func(w io.Writer) error {
			_, err := compiler.WriteAST(w, art.Program)
			return err
		}); err != nil {
			return err
		}
	}
	if art.Table != nil {
		if err := writeFile(outs[3], func(w io.Writer) error {
			_, err := art.Table.WriteTo(w)
			return err
		}); err != nil {
			return err
		}
	}
	if art.TAC != nil {
		if err := writeFile(outs[4], func(w io.Writer) error {
			_, err := art.TAC.WriteTo(w)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
