package main

import (
	"context"
	"io"

	"github.com/wudi/pagxkit/optimize"
	"github.com/wudi/pagxkit/writer"
)

func runFormat(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("format", "Formats a PAGX file with consistent indentation and attribute\n"+
		"ordering. By default, also applies structural optimizations.", stdout, stderr)
	var output string
	env.stringFlag(&output, "o", "output", "", "output file path (default: overwrite input)")
	indent := env.flags.Int("indent", writer.DefaultOptions().Indent, "indentation spaces")
	noOptimize := env.flags.Bool("no-optimize", false, "only format, skip optimizations")

	input, code, ok := env.parse(args)
	if !ok {
		return code
	}
	if *indent < 0 {
		env.errorf("indent must not be negative")
		return exitUsage
	}
	if output == "" {
		output = input
	}

	logger := env.logger()
	doc, err := env.load(ctx, input, logger)
	if err != nil {
		env.errorf("%v", err)
		return exitError
	}
	if !*noOptimize {
		optimize.New(optimize.DefaultConfig(), optimize.WithLogger(logger)).Optimize(ctx, doc)
	}
	if err := env.save(output, doc, writer.Options{Indent: *indent}); err != nil {
		env.errorf("%v", err)
		return exitError
	}
	return exitOK
}
