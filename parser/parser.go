// Package parser decodes PAGX XML into a scene.Document.
//
// Parsing runs in two phases. The first builds every node and records each
// "@id" reference it meets; the second binds those references once all ids
// are known, so resources may be declared before or after their users.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/recovery"
	"github.com/wudi/pagxkit/scene"
)

var (
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrReferenceType       = errors.New("reference to wrong node type")
	ErrDuplicateID         = errors.New("duplicate id")
)

// Error locates a parse failure in the source document.
type Error struct {
	Line    int
	Element string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: <%s>: %v", e.Line, e.Element, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config controls PAGX parsing. Recovery decides what happens on malformed
// attribute values, duplicate ids and unresolved references; the default
// fails on the first one.
type Config struct {
	Logger   observability.Logger
	Tracer   observability.Tracer
	Recovery recovery.Strategy
}

// DocumentParser builds scene documents from PAGX XML.
type DocumentParser struct {
	cfg Config
}

func NewDocumentParser(cfg Config) *DocumentParser {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.NewStrictStrategy()
	}
	return &DocumentParser{cfg: cfg}
}

// Parse decodes a document with the default configuration.
func Parse(r io.Reader) (*scene.Document, error) {
	return NewDocumentParser(Config{}).Parse(context.Background(), r)
}

// ParseFile opens and decodes the document at path.
func ParseFile(path string) (*scene.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func (p *DocumentParser) Parse(ctx context.Context, r io.Reader) (*scene.Document, error) {
	_, span := p.cfg.Tracer.StartSpan(ctx, "parser.parse")
	defer span.Finish()

	root, err := readTree(r)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	b := &builder{
		ctx:      ctx,
		doc:      &scene.Document{Version: scene.Version},
		ids:      make(map[string]scene.Node),
		logger:   p.cfg.Logger,
		recovery: p.cfg.Recovery,
	}
	b.document(root)
	if b.err == nil {
		b.resolve()
	}
	if b.err != nil {
		span.SetError(b.err)
		return nil, b.err
	}
	span.SetTag(observability.KeyNodeCount, len(b.doc.Nodes))
	p.cfg.Logger.Debug("parsed document",
		observability.Int(observability.KeyNodeCount, len(b.doc.Nodes)),
		observability.Int("layers", len(b.doc.Layers)))
	return b.doc, nil
}

// reference is an "@id" use waiting for the second phase.
type reference struct {
	id   string
	attr string
	el   *element
	bind func(scene.Node) bool
}

type builder struct {
	ctx      context.Context
	doc      *scene.Document
	ids      map[string]scene.Node
	refs     []reference
	logger   observability.Logger
	recovery recovery.Strategy
	err      error
}

func (b *builder) fail(el *element, err error) {
	if b.err == nil {
		b.err = &Error{Line: el.line, Element: el.name, Err: err}
	}
}

// report hands a recoverable error to the recovery strategy and fails the
// parse unless the strategy continues.
func (b *builder) report(el *element, component string, err error) {
	if b.err != nil {
		return
	}
	loc := recovery.Location{Line: el.line, Element: el.name, Component: component}
	switch b.recovery.OnError(b.ctx, err, loc) {
	case recovery.ActionSkip:
	case recovery.ActionWarn:
		b.logger.Warn("recovered from document error",
			observability.Int("line", el.line),
			observability.String("element", el.name),
			observability.Error("error", err))
	default:
		b.fail(el, err)
	}
}

// add transfers n to the document and registers the element's id.
func add[T scene.Node](b *builder, el *element, n T) T {
	scene.Add(b.doc, n)
	if id, ok := el.attr("id"); ok && id != "" {
		if _, dup := b.ids[id]; dup {
			b.report(el, "id", fmt.Errorf("%w: %q", ErrDuplicateID, id))
			return n
		}
		scene.SetID(n, id)
		b.ids[id] = n
	}
	return n
}

func (b *builder) skip(el *element, parent string) {
	b.logger.Debug("skipping unknown element",
		observability.String("element", el.name),
		observability.String("parent", parent),
		observability.Int("line", el.line))
}

// refTo returns a binder that stores the referenced node in set when it has
// type T.
func refTo[T scene.Node](set func(T)) func(scene.Node) bool {
	return func(n scene.Node) bool {
		v, ok := n.(T)
		if ok {
			set(v)
		}
		return ok
	}
}

// reference queues value (which must be "@id") for resolution.
func (b *builder) reference(el *element, attr, value string, bind func(scene.Node) bool) {
	id, ok := refID(value)
	if !ok {
		b.report(el, attr, fmt.Errorf("attribute %s: expected @id reference, got %q", attr, value))
		return
	}
	b.refs = append(b.refs, reference{id: id, attr: attr, el: el, bind: bind})
}

func refID(value string) (string, bool) {
	if len(value) < 2 || value[0] != '@' {
		return "", false
	}
	return value[1:], true
}

// resolve binds queued references. A reference the recovery strategy lets
// through stays unset.
func (b *builder) resolve() {
	for _, r := range b.refs {
		if b.err != nil {
			return
		}
		n, ok := b.ids[r.id]
		if !ok {
			b.report(r.el, r.attr, fmt.Errorf("%w: @%s", ErrUnresolvedReference, r.id))
			continue
		}
		if !r.bind(n) {
			b.report(r.el, r.attr, fmt.Errorf("%w: @%s is a %s", ErrReferenceType, r.id, n.NodeType()))
		}
	}
}

// attrs reads typed attribute values of one element. Malformed values are
// reported through the builder and yield the default.
type attrs struct {
	b  *builder
	el *element
}

func (b *builder) attrs(el *element) attrs { return attrs{b: b, el: el} }

func (a attrs) invalid(name string, err error) {
	a.b.report(a.el, name, fmt.Errorf("attribute %s: %w", name, err))
}

func (a attrs) str(name, def string) string {
	if v, ok := a.el.attr(name); ok {
		return v
	}
	return def
}

// enum returns the attribute value, or "" when it is absent or equal to the
// default.
func (a attrs) enum(name, def string) string {
	v, ok := a.el.attr(name)
	if !ok || v == def {
		return ""
	}
	return v
}

func (a attrs) float(name string, def float32) float32 {
	v, ok := a.el.attr(name)
	if !ok {
		return def
	}
	f, err := parseFloat(v)
	if err != nil {
		a.invalid(name, err)
		return def
	}
	return f
}

func (a attrs) int(name string, def int) int {
	return int(a.float(name, float32(def)))
}

func (a attrs) bool(name string, def bool) bool {
	v, ok := a.el.attr(name)
	if !ok {
		return def
	}
	f, err := parseBool(v)
	if err != nil {
		a.invalid(name, err)
		return def
	}
	return f
}

func (a attrs) point(name string, def scene.Point) scene.Point {
	v, ok := a.el.attr(name)
	if !ok {
		return def
	}
	p, err := parsePoint(v)
	if err != nil {
		a.invalid(name, err)
		return def
	}
	return p
}

func (a attrs) size(name string, def scene.Size) scene.Size {
	p := a.point(name, scene.Point{X: def.Width, Y: def.Height})
	return scene.Size{Width: p.X, Height: p.Y}
}

func (a attrs) color(name string, def scene.Color) scene.Color {
	v, ok := a.el.attr(name)
	if !ok {
		return def
	}
	c, err := ParseColor(v)
	if err != nil {
		a.invalid(name, err)
		return def
	}
	return c
}

func (a attrs) optionalColor(name string) *scene.Color {
	if _, ok := a.el.attr(name); !ok {
		return nil
	}
	c := a.color(name, scene.Black)
	return &c
}

func (a attrs) floats(name string) []float32 {
	v, ok := a.el.attr(name)
	if !ok {
		return nil
	}
	f, err := parseFloatList(v)
	if err != nil {
		a.invalid(name, err)
		return nil
	}
	return f
}

func (a attrs) points(name string) []scene.Point {
	v, ok := a.el.attr(name)
	if !ok {
		return nil
	}
	p, err := parsePointList(v)
	if err != nil {
		a.invalid(name, err)
		return nil
	}
	return p
}

func (a attrs) matrix(name string) scene.Matrix {
	v, ok := a.el.attr(name)
	if !ok {
		return scene.Matrix{}
	}
	m, err := parseMatrix(v)
	if err != nil {
		a.invalid(name, err)
		return scene.Matrix{}
	}
	return m
}
