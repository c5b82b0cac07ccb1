// Package writer encodes a scene.Document as canonical PAGX XML: fixed
// attribute order per element, default values omitted, layers first and
// shared resources last.
package writer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/wudi/pagxkit/scene"
)

// ErrDetachedMask is returned when a layer's mask is not itself part of the
// layer tree, so no element could carry the id it is referenced by.
var ErrDetachedMask = errors.New("mask layer is not in the layer tree")

type Options struct {
	// Indent is the number of spaces per nesting level.
	Indent int
}

func DefaultOptions() Options {
	return Options{Indent: 2}
}

// Marshal encodes doc with the default options.
func Marshal(doc *scene.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, DefaultOptions()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Write(w io.Writer, doc *scene.Document, opts Options) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if opts.Indent < 0 {
		opts.Indent = 0
	}
	e := &encoder{plan: newPlan(doc), inTree: make(map[*scene.Layer]bool)}
	root := e.document(doc)
	if e.err != nil {
		return e.err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	render(bw, root, 0, opts.Indent)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

type encoder struct {
	plan   *plan
	inTree map[*scene.Layer]bool
	masks  []*scene.Layer
	err    error
}

func (e *encoder) document(doc *scene.Document) *xmlElement {
	root := newElement("pagx")
	root.set("version", orDefault(doc.Version, scene.Version))
	root.set("width", scene.FormatFloat(doc.Width))
	root.set("height", scene.FormatFloat(doc.Height))
	for _, l := range doc.Layers {
		root.add(e.layer(l))
	}
	if len(e.plan.resources) > 0 {
		res := newElement("Resources")
		for _, n := range e.plan.resources {
			res.add(e.resource(n))
		}
		root.add(res)
	}
	for _, m := range e.masks {
		if !e.inTree[m] && e.err == nil {
			e.err = fmt.Errorf("%w: %q", ErrDetachedMask, e.layerID(m))
		}
	}
	return root
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
