package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/optimize"
	"github.com/wudi/pagxkit/schema"
	"github.com/wudi/pagxkit/writer"
)

const optimizeUsage = `Applies deterministic structural optimizations to a PAGX file.

Optimizations:
  1. Remove empty elements (empty Layer/Group, zero-width Stroke)
  2. Deduplicate PathData resources
  3. Deduplicate gradient resources
  4. Replace Path with Rectangle/Ellipse
  5. Remove full-canvas clip masks
  6. Localize layer coordinates
  7. Extract repeated layers into compositions
  8. Remove unreferenced resources`

func runOptimize(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := newCommandEnv("optimize", optimizeUsage, stdout, stderr)
	var output string
	env.stringFlag(&output, "o", "output", "", "output file path (default: overwrite input)")
	dryRun := env.flags.Bool("dry-run", false, "only print the report, do not write output")

	input, code, ok := env.parse(args)
	if !ok {
		return code
	}
	if output == "" {
		output = input
	}

	if err := schema.ValidateFile(input); err != nil {
		var invalid *schema.Error
		if errors.As(err, &invalid) {
			for _, msg := range invalid.Messages() {
				env.errorf("%s", msg)
			}
			env.errorf("%s fails to validate", input)
			return exitError
		}
		env.errorf("%v", err)
		return exitError
	}

	logger := env.logger().With(observability.Bool("dryRun", *dryRun))
	doc, err := env.load(ctx, input, logger)
	if err != nil {
		env.errorf("%v", err)
		return exitError
	}
	report := optimize.New(optimize.FullConfig(), optimize.WithLogger(logger)).Optimize(ctx, doc)
	printReport(stdout, report)
	if *dryRun {
		return exitOK
	}
	if err := env.save(output, doc, writer.DefaultOptions()); err != nil {
		env.errorf("%v", err)
		return exitError
	}
	return exitOK
}

func printReport(w io.Writer, r optimize.Report) {
	total := r.Total()
	if total == 0 {
		fmt.Fprintln(w, "pagx optimize: no optimizations needed")
		return
	}
	fmt.Fprintf(w, "pagx optimize: %d optimizations applied\n", total)
	lines := []struct {
		n      int
		format string
	}{
		{r.EmptyNodes, "removed %d empty elements"},
		{r.PathDataMerged, "deduplicated %d PathData resources"},
		{r.GradientsMerged, "deduplicated %d gradient resources"},
		{r.UnreferencedResources, "removed %d unreferenced resources"},
		{r.PathsToRectangles, "replaced %d Path with Rectangle"},
		{r.PathsToEllipses, "replaced %d Path with Ellipse"},
		{r.FullCanvasClipMasks, "removed %d full-canvas clip masks"},
		{r.LocalizedLayers, "localized %d layers"},
		{r.CompositionsExtracted, "extracted %d compositions"},
	}
	for _, l := range lines {
		if l.n > 0 {
			fmt.Fprintf(w, "  - "+l.format+"\n", l.n)
		}
	}
}
