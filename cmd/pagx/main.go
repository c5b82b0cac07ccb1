// Command pagx formats, optimizes and embeds fonts into PAGX documents.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/parser"
	"github.com/wudi/pagxkit/recovery"
	"github.com/wudi/pagxkit/scene"
	"github.com/wudi/pagxkit/writer"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) int
}

var commands = []command{
	{"format", "Pretty-print a PAGX file, optionally optimizing it", runFormat},
	{"optimize", "Validate and apply structural optimizations", runOptimize},
	{"font", "Shape text and embed glyphs as fonts", runFont},
}

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		printUsage(stdout)
		return exitOK
	}
	for _, c := range commands {
		if c.name == name {
			return c.run(context.Background(), args[1:], stdout, stderr)
		}
	}
	fmt.Fprintf(stderr, "pagx: unknown command %q\n", name)
	printUsage(stderr)
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagx <command> [options] <file.pagx>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pagx <command> --help' for command options.")
}

// commandEnv holds the state every command shares.
type commandEnv struct {
	name    string
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	lenient bool
	flags   *flag.FlagSet
}

func newCommandEnv(name, usage string, stdout, stderr io.Writer) *commandEnv {
	env := &commandEnv{name: name, stdout: stdout, stderr: stderr}
	fs := flag.NewFlagSet("pagx "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&env.verbose, "verbose", false, "log pipeline details to stderr")
	fs.BoolVar(&env.lenient, "lenient", false, "warn about bad attribute values and dangling references instead of failing")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pagx %s [options] <file.pagx>\n\n%s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	env.flags = fs
	return env
}

// stringFlag registers a string option under a short and a long name.
func (env *commandEnv) stringFlag(p *string, short, long, value, usage string) {
	env.flags.StringVar(p, long, value, usage)
	if short != "" {
		env.flags.StringVar(p, short, value, "shorthand for --"+long)
	}
}

// parse accepts options before and after the input path and returns the
// single positional argument. The int result is the exit code to use when
// ok is false.
func (env *commandEnv) parse(args []string) (input string, code int, ok bool) {
	var positional []string
	for {
		if err := env.flags.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return "", exitOK, false
			}
			return "", exitUsage, false
		}
		args = env.flags.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	switch len(positional) {
	case 0:
		env.errorf("missing input file")
		env.flags.Usage()
		return "", exitUsage, false
	case 1:
		return positional[0], exitOK, true
	default:
		env.errorf("unexpected argument %q", positional[1])
		return "", exitUsage, false
	}
}

func (env *commandEnv) errorf(format string, args ...any) {
	fmt.Fprintf(env.stderr, "pagx %s: %s\n", env.name, fmt.Sprintf(format, args...))
}

func (env *commandEnv) logger() observability.Logger {
	level := slog.LevelWarn
	if env.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(env.stderr, &slog.HandlerOptions{Level: level})
	return observability.NewSlogLogger(slog.New(handler)).With(observability.String("command", env.name))
}

func (env *commandEnv) load(ctx context.Context, path string, logger observability.Logger) (*scene.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	defer f.Close()
	cfg := parser.Config{Logger: logger}
	if env.lenient {
		cfg.Recovery = recovery.NewLenientStrategy()
	}
	doc, err := parser.NewDocumentParser(cfg).Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	return doc, nil
}

// save encodes doc fully before touching path so a failed export leaves
// the previous file intact.
func (env *commandEnv) save(path string, doc *scene.Document, opts writer.Options) error {
	var buf bytes.Buffer
	if err := writer.Write(&buf, doc, opts); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
