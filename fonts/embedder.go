package fonts

import (
	"context"
	"math"
	"strconv"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/scene"
)

// VectorUnitsPerEm is the design grid of the embedded vector font.
const VectorUnitsPerEm = 1000

const minFontSize = 0.001

type glyphKey struct {
	typeface Typeface
	id       GlyphID
}

type glyphKind uint8

const (
	kindUnknown glyphKind = iota
	kindVector
	kindBitmap
	kindSpacing
)

type glyphMapping map[glyphKey]scene.GlyphID

type vectorBuilder struct {
	font    *scene.Font
	mapping glyphMapping
}

type bitmapBuilder struct {
	backingSize int
	font        *scene.Font
	mapping     glyphMapping
}

// EmbedStats summarizes one Embed call.
type EmbedStats struct {
	Fonts        int
	Glyphs       int
	GlyphRuns    int
	SkippedTexts int
}

// Embedder converts shaped text into embedded Font resources and GlyphRuns.
// It keeps no state between calls.
type Embedder struct {
	logger observability.Logger
	tracer observability.Tracer
}

func NewEmbedder(opts ...Option) *Embedder {
	s := newSettings(opts)
	return &Embedder{logger: s.logger, tracer: s.tracer}
}

// Embed runs a default Embedder.
func Embed(doc *scene.Document, shaped ShapedTextMap, order []*scene.Text) EmbedStats {
	return NewEmbedder().Embed(context.Background(), doc, shaped, order)
}

// Embed collects every glyph referenced by the shaped texts in order into
// at most one vector font plus one bitmap font per typeface, then replaces
// the GlyphRuns of each Text in order. Texts without a shaping result end
// up with no glyph runs.
func (e *Embedder) Embed(ctx context.Context, doc *scene.Document, shaped ShapedTextMap, order []*scene.Text) EmbedStats {
	if doc == nil {
		return EmbedStats{}
	}
	s := &embedState{
		doc:       doc,
		logger:    e.logger,
		kinds:     make(map[glyphKey]glyphKind),
		maxSizes:  make(map[glyphKey]float32),
		vector:    vectorBuilder{mapping: make(glyphMapping)},
		bitmaps:   make(map[Typeface]*bitmapBuilder),
		fullFonts: make(map[*scene.Font]struct{}),
	}

	_, span := e.tracer.StartSpan(ctx, "fonts.collect")
	for _, text := range order {
		blob := blobFor(shaped, text)
		if blob == nil {
			continue
		}
		for i := range blob.Runs {
			s.collectRun(&blob.Runs[i])
		}
	}
	s.assignFontIDs()
	span.SetTag(observability.KeyFontCount, s.stats.Fonts)
	span.Finish()

	_, span = e.tracer.StartSpan(ctx, "fonts.runs")
	for _, text := range order {
		if text == nil {
			continue
		}
		text.GlyphRuns = nil
		blob := blobFor(shaped, text)
		if blob == nil {
			s.stats.SkippedTexts++
			continue
		}
		for i := range blob.Runs {
			s.buildRuns(text, &blob.Runs[i])
		}
	}
	span.SetTag(observability.KeyGlyphRuns, s.stats.GlyphRuns)
	span.Finish()

	e.logger.Debug("embedded fonts",
		observability.Int(observability.KeyFontCount, s.stats.Fonts),
		observability.Int(observability.KeyGlyphCount, s.stats.Glyphs),
		observability.Int(observability.KeyGlyphRuns, s.stats.GlyphRuns),
		observability.Int(observability.KeySkippedTexts, s.stats.SkippedTexts))
	return s.stats
}

func blobFor(shaped ShapedTextMap, text *scene.Text) *TextBlob {
	if text == nil {
		return nil
	}
	st, ok := shaped[text]
	if !ok {
		return nil
	}
	return st.Blob
}

type embedState struct {
	doc         *scene.Document
	logger      observability.Logger
	kinds       map[glyphKey]glyphKind
	maxSizes    map[glyphKey]float32
	vector      vectorBuilder
	bitmaps     map[Typeface]*bitmapBuilder
	bitmapOrder []Typeface
	fullFonts   map[*scene.Font]struct{}
	stats       EmbedStats
}

func (s *embedState) collectRun(run *ShapedRun) {
	if run.Font.Typeface == nil {
		return
	}
	for _, id := range run.Glyphs {
		key := glyphKey{run.Font.Typeface, id}
		kind := s.kinds[key]
		if kind == kindUnknown {
			kind = classify(run.Font, id)
			s.kinds[key] = kind
		}
		switch kind {
		case kindVector:
			s.collectVector(run.Font, id)
		case kindBitmap:
			s.collectBitmap(run.Font, id)
		case kindSpacing:
			s.collectSpacing(run.Font, id)
		}
	}
}

func classify(f Font, id GlyphID) glyphKind {
	if p, ok := f.path(id); ok && !p.IsEmpty() {
		return kindVector
	}
	if _, _, ok := f.image(id); ok {
		return kindBitmap
	}
	return kindSpacing
}

// collectVector records the outline of a glyph at the largest size it is
// used with, scaled to the VectorUnitsPerEm grid.
func (s *embedState) collectVector(f Font, id GlyphID) {
	key := glyphKey{f.Typeface, id}
	if prev, ok := s.maxSizes[key]; ok && f.Size <= prev {
		return
	}
	if _, ok := s.vector.mapping[key]; !ok && s.full(s.vector.font, f, id) {
		return
	}
	s.maxSizes[key] = f.Size

	path, ok := f.path(id)
	if !ok || path.IsEmpty() || f.Size < minFontSize {
		return
	}
	scale := VectorUnitsPerEm / f.Size
	if s.vector.font == nil {
		s.vector.font = scene.Add(s.doc, &scene.Font{UnitsPerEm: VectorUnitsPerEm})
	}
	data := scene.Add(s.doc, scaledPath(path, scale))
	advance := f.advance(id) * scale

	if gid, ok := s.vector.mapping[key]; ok {
		g := s.vector.font.Glyph(gid)
		g.Payload = scene.VectorGlyph{Path: data}
		g.Advance = advance
		return
	}
	g := scene.Add(s.doc, &scene.Glyph{Payload: scene.VectorGlyph{Path: data}, Advance: advance})
	s.vector.mapping[key] = s.vector.font.AddGlyph(g)
}

func scaledPath(src *scene.PathData, scale float32) *scene.PathData {
	dst := &scene.PathData{
		Verbs:  append([]scene.PathVerb(nil), src.Verbs...),
		Points: make([]float32, len(src.Points)),
	}
	for i, v := range src.Points {
		dst.Points[i] = round32(v * scale)
	}
	return dst
}

// collectBitmap stores a glyph image in the typeface's bitmap font. The
// font's unitsPerEm is the strike's backing size, fixed by the first glyph.
func (s *embedState) collectBitmap(f Font, id GlyphID) {
	b := s.bitmaps[f.Typeface]
	if b == nil {
		b = &bitmapBuilder{mapping: make(glyphMapping)}
		s.bitmaps[f.Typeface] = b
	}
	key := glyphKey{f.Typeface, id}
	if _, ok := b.mapping[key]; ok || s.full(b.font, f, id) {
		return
	}
	img, m, ok := f.image(id)
	if !ok {
		return
	}
	if b.backingSize == 0 {
		scaleX := abs32(m.ScaleX())
		if scaleX < minFontSize {
			return
		}
		backing := int(math.Round(float64(f.Size / scaleX)))
		if backing < 1 {
			return
		}
		b.backingSize = backing
		b.font = scene.Add(s.doc, &scene.Font{UnitsPerEm: backing})
		s.bitmapOrder = append(s.bitmapOrder, f.Typeface)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 || f.Size <= 0 {
		return
	}
	data, err := encodeGlyphImage(img)
	if err != nil {
		s.logger.Warn("skipping bitmap glyph",
			observability.String("typeface", f.Typeface.Name()),
			observability.Int("glyph", int(id)),
			observability.Error("error", err))
		return
	}

	toBacking := float32(b.backingSize) / f.Size
	image := scene.Add(s.doc, &scene.Image{Data: data})
	g := scene.Add(s.doc, &scene.Glyph{
		Payload: scene.BitmapGlyph{Image: image},
		Offset:  scene.Point{X: m.Tx * toBacking, Y: m.Ty * toBacking},
		Advance: f.advance(id) * toBacking,
	})
	b.mapping[key] = b.font.AddGlyph(g)
}

// collectSpacing adds an ink-less glyph to the typeface's bitmap font, or
// to the vector font when the typeface has no bitmap font. It is dropped
// when neither exists yet.
func (s *embedState) collectSpacing(f Font, id GlyphID) {
	advance := f.advance(id)
	if advance <= 0 || f.Size < minFontSize {
		return
	}
	key := glyphKey{f.Typeface, id}
	if b := s.bitmaps[f.Typeface]; b != nil && b.font != nil {
		if _, ok := b.mapping[key]; ok || s.full(b.font, f, id) {
			return
		}
		g := scene.Add(s.doc, &scene.Glyph{Advance: advance / f.Size * float32(b.backingSize)})
		b.mapping[key] = b.font.AddGlyph(g)
		return
	}
	if s.vector.font != nil {
		if _, ok := s.vector.mapping[key]; ok || s.full(s.vector.font, f, id) {
			return
		}
		g := scene.Add(s.doc, &scene.Glyph{Advance: advance * VectorUnitsPerEm / f.Size})
		s.vector.mapping[key] = s.vector.font.AddGlyph(g)
	}
}

// full reports whether font can take no more glyphs. Glyphs turned away
// are left out of the glyph runs; the first one per font is logged.
func (s *embedState) full(font *scene.Font, f Font, id GlyphID) bool {
	if font == nil || !font.Full() {
		return false
	}
	if _, ok := s.fullFonts[font]; !ok {
		s.fullFonts[font] = struct{}{}
		s.logger.Warn("embedded font is full, dropping further glyphs",
			observability.String("typeface", f.Typeface.Name()),
			observability.Int("glyph", int(id)),
			observability.Int(observability.KeyGlyphCount, len(font.Glyphs)))
	}
	return true
}

// assignFontIDs numbers fonts font1, font2, ...: the vector font first,
// then bitmap fonts in the order their typefaces were first seen.
func (s *embedState) assignFontIDs() {
	fonts := make([]*scene.Font, 0, 1+len(s.bitmapOrder))
	if s.vector.font != nil {
		fonts = append(fonts, s.vector.font)
	}
	for _, tf := range s.bitmapOrder {
		if b := s.bitmaps[tf]; b != nil && b.font != nil {
			fonts = append(fonts, b.font)
		}
	}
	for i, f := range fonts {
		f.ID = "font" + strconv.Itoa(i+1)
		s.stats.Glyphs += len(f.Glyphs)
	}
	s.stats.Fonts = len(fonts)
}

// buildRuns appends up to two glyph runs for run to text: the glyphs that
// landed in the vector font, then those in the typeface's bitmap font.
func (s *embedState) buildRuns(text *scene.Text, run *ShapedRun) {
	if len(run.Glyphs) == 0 || run.Font.Typeface == nil {
		return
	}
	b := s.bitmaps[run.Font.Typeface]
	var vectorIdx, bitmapIdx []int
	for i, id := range run.Glyphs {
		key := glyphKey{run.Font.Typeface, id}
		if _, ok := s.vector.mapping[key]; ok {
			vectorIdx = append(vectorIdx, i)
		} else if b != nil {
			if _, ok := b.mapping[key]; ok {
				bitmapIdx = append(bitmapIdx, i)
			}
		}
	}
	if len(vectorIdx) > 0 && s.vector.font != nil {
		text.GlyphRuns = append(text.GlyphRuns, newGlyphRun(s.doc, run, vectorIdx, s.vector.font, s.vector.mapping))
		s.stats.GlyphRuns++
	}
	if len(bitmapIdx) > 0 && b.font != nil {
		text.GlyphRuns = append(text.GlyphRuns, newGlyphRun(s.doc, run, bitmapIdx, b.font, b.mapping))
		s.stats.GlyphRuns++
	}
}
