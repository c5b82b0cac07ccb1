package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/pagxkit/fonts"
	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/writer"
)

// fileList is a repeatable string flag.
type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }

func (l *fileList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runFont(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "embed":
			args = args[1:]
		case "info":
			return runFontInfo(args[1:], stdout, stderr)
		}
	}

	env := newCommandEnv("font", "Embeds fonts into a PAGX file by shaping every Text element and\n"+
		"replacing its glyph runs with embedded Font resources.", stdout, stderr)
	var output string
	var files fileList
	env.stringFlag(&output, "o", "output", "", "output file path (default: overwrite input)")
	env.flags.Var(&files, "font", "font file to shape with; repeatable, the first one is the fallback")
	env.flags.Var(&files, "file", "alias for --font")

	input, code, ok := env.parse(args)
	if !ok {
		return code
	}
	if len(files) == 0 {
		env.errorf("at least one --font is required")
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

	shaper := fonts.NewShaper(fonts.WithLogger(logger))
	for _, path := range files {
		tf, err := fonts.LoadTypefaceFile(path)
		if err != nil {
			env.errorf("failed to load font %q: %v", path, err)
			return exitError
		}
		logger.Debug("registered typeface",
			observability.String("family", tf.Name()),
			observability.String("path", path))
		shaper.Register(tf)
	}

	shaped, order := shaper.Shape(ctx, doc)
	stats := fonts.NewEmbedder(fonts.WithLogger(logger)).Embed(ctx, doc, shaped, order)
	if stats.SkippedTexts > 0 {
		logger.Warn("some text could not be shaped",
			observability.Int(observability.KeySkippedTexts, stats.SkippedTexts))
	}

	if err := env.save(output, doc, writer.DefaultOptions()); err != nil {
		env.errorf("%v", err)
		return exitError
	}
	return exitOK
}

func runFontInfo(args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("font info", "Prints the family name and units per em of a font file.", stdout, stderr)
	env.flags.Usage = func() {
		fmt.Fprintf(env.flags.Output(), "Usage: pagx font info <font-file>\n")
	}
	path, code, ok := env.parse(args)
	if !ok {
		return code
	}
	tf, err := fonts.LoadTypefaceFile(path)
	if err != nil {
		env.errorf("failed to load font %q: %v", path, err)
		return exitError
	}
	fmt.Fprintf(stdout, "fontFamily: %s\n", tf.Name())
	fmt.Fprintf(stdout, "unitsPerEm: %d\n", tf.UnitsPerEm())
	return exitOK
}
