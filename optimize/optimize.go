// Package optimize rewrites a PAGX document into an equivalent, smaller one.
// Every pass mutates the document in place and degrades to doing less work
// on unexpected shapes; none of them fail.
package optimize

import (
	"context"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/scene"
)

type Config struct {
	RemoveEmptyNodes          bool
	DeduplicatePathData       bool
	DeduplicateGradients      bool
	ReplacePrimitives         bool
	RemoveFullCanvasClipMasks bool
	LocalizeCoordinates       bool
	ExtractCompositions       bool
	CleanUnusedResources      bool
}

// DefaultConfig enables the structural passes: empty-node pruning, PathData
// and gradient deduplication, and unreferenced resource collection.
func DefaultConfig() Config {
	return Config{
		RemoveEmptyNodes:     true,
		DeduplicatePathData:  true,
		DeduplicateGradients: true,
		CleanUnusedResources: true,
	}
}

// FullConfig enables every pass, as used by `pagx optimize`.
func FullConfig() Config {
	return Config{
		RemoveEmptyNodes:          true,
		DeduplicatePathData:       true,
		DeduplicateGradients:      true,
		ReplacePrimitives:         true,
		RemoveFullCanvasClipMasks: true,
		LocalizeCoordinates:       true,
		ExtractCompositions:       true,
		CleanUnusedResources:      true,
	}
}

type Option func(*Optimizer)

func WithLogger(l observability.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(o *Optimizer) {
		if t != nil {
			o.tracer = t
		}
	}
}

type Optimizer struct {
	config Config
	logger observability.Logger
	tracer observability.Tracer
}

func New(config Config, opts ...Option) *Optimizer {
	o := &Optimizer{
		config: config,
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Report counts what each pass changed.
type Report struct {
	EmptyNodes            int
	PathDataMerged        int
	GradientsMerged       int
	PathsToRectangles     int
	PathsToEllipses       int
	FullCanvasClipMasks   int
	LocalizedLayers       int
	CompositionsExtracted int
	UnreferencedResources int
}

// Total returns the number of individual optimizations applied.
func (r Report) Total() int {
	return r.EmptyNodes + r.PathDataMerged + r.GradientsMerged + r.PathsToRectangles +
		r.PathsToEllipses + r.FullCanvasClipMasks + r.LocalizedLayers +
		r.CompositionsExtracted + r.UnreferencedResources
}

// Optimize runs the default passes over doc.
func Optimize(doc *scene.Document) {
	New(DefaultConfig()).Optimize(context.Background(), doc)
}

// Optimize runs the enabled passes in pipeline order. Pruning precedes
// deduplication so merged-away nodes and newly empty containers are both
// visible to the final collection pass.
func (o *Optimizer) Optimize(ctx context.Context, doc *scene.Document) Report {
	var r Report
	if doc == nil {
		return r
	}
	if o.config.RemoveEmptyNodes {
		r.EmptyNodes = o.pass(ctx, "remove-empty-nodes", func() int { return removeEmptyNodes(doc) })
	}
	if o.config.DeduplicatePathData {
		r.PathDataMerged = o.mergePass(ctx, "deduplicate-path-data", func() int { return deduplicatePathData(doc) })
	}
	if o.config.DeduplicateGradients {
		r.GradientsMerged = o.mergePass(ctx, "deduplicate-gradients", func() int { return deduplicateGradients(doc) })
	}
	if o.config.ReplacePrimitives {
		o.pass(ctx, "replace-primitives", func() int {
			r.PathsToRectangles, r.PathsToEllipses = replacePathsWithPrimitives(doc)
			return r.PathsToRectangles + r.PathsToEllipses
		})
	}
	if o.config.RemoveFullCanvasClipMasks {
		r.FullCanvasClipMasks = o.pass(ctx, "remove-full-canvas-clip-masks", func() int {
			return removeFullCanvasClipMasks(doc, doc.Layers)
		})
	}
	if o.config.LocalizeCoordinates {
		r.LocalizedLayers = o.pass(ctx, "localize-coordinates", func() int { return localizeCoordinates(doc) })
	}
	if o.config.ExtractCompositions {
		r.CompositionsExtracted = o.pass(ctx, "extract-compositions", func() int { return extractCompositions(doc) })
	}
	if o.config.CleanUnusedResources {
		r.UnreferencedResources = o.pass(ctx, "remove-unreferenced-resources", func() int {
			return removeUnreferencedResources(doc)
		})
	}
	o.logger.Debug("optimize finished",
		observability.Int("changes", r.Total()),
		observability.Int(observability.KeyNodeCount, len(doc.Nodes)))
	return r
}

func (o *Optimizer) pass(ctx context.Context, name string, fn func() int) int {
	return o.run(ctx, name, observability.KeyRemoved, fn)
}

// mergePass runs a deduplication pass, whose count is nodes merged into an
// equal first occurrence.
func (o *Optimizer) mergePass(ctx context.Context, name string, fn func() int) int {
	return o.run(ctx, name, observability.KeyMerged, fn)
}

func (o *Optimizer) run(ctx context.Context, name, key string, fn func() int) int {
	_, span := o.tracer.StartSpan(ctx, "optimize."+name)
	defer span.Finish()
	n := fn()
	span.SetTag(key, n)
	if n > 0 {
		o.logger.Debug("pass applied",
			observability.String(observability.KeyPass, name),
			observability.Int(key, n))
	}
	return n
}
