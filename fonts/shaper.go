package fonts

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/pagxkit/observability"
	"github.com/wudi/pagxkit/scene"
)

// Shaper turns Text elements into horizontal shaped runs using HarfBuzz
// shaping. Typefaces are looked up by family name; the first registered
// typeface is the fallback for unknown families.
type Shaper struct {
	families map[string]*GoTextTypeface
	fallback *GoTextTypeface
	shaper   shaping.HarfbuzzShaper
	logger   observability.Logger
	tracer   observability.Tracer
}

func NewShaper(opts ...Option) *Shaper {
	s := newSettings(opts)
	return &Shaper{
		families: make(map[string]*GoTextTypeface),
		logger:   s.logger,
		tracer:   s.tracer,
	}
}

// Register makes t available under its name. A later typeface with the same
// family name replaces the earlier one.
func (s *Shaper) Register(t *GoTextTypeface) {
	if t == nil {
		return
	}
	s.families[strings.ToLower(t.Name())] = t
	if s.fallback == nil {
		s.fallback = t
	}
}

// Lookup returns the typeface registered for family, or the fallback.
func (s *Shaper) Lookup(family string) *GoTextTypeface {
	if t, ok := s.families[strings.ToLower(strings.TrimSpace(family))]; ok {
		return t
	}
	return s.fallback
}

// Shape shapes every Text reachable from the document's layers. The
// returned order lists all Text elements in traversal order, including
// those that could not be shaped.
func (s *Shaper) Shape(ctx context.Context, doc *scene.Document) (ShapedTextMap, []*scene.Text) {
	shaped := make(ShapedTextMap)
	if doc == nil {
		return shaped, nil
	}
	_, span := s.tracer.StartSpan(ctx, "fonts.shape")
	defer span.Finish()

	order := TextOrder(doc)
	for _, text := range order {
		st, ok := s.ShapeText(text)
		if !ok {
			s.logger.Debug("text not shaped",
				observability.String("family", text.FontFamily),
				observability.Float("size", float64(text.FontSize)),
				observability.Int("length", len(text.Text)))
			continue
		}
		shaped[text] = st
	}
	span.SetTag(observability.KeySkippedTexts, len(order)-len(shaped))
	return shaped, order
}

// ShapeText shapes a single Text. Glyph x positions include the text
// position, letter spacing and anchor alignment; the run baseline is the
// text position's y.
func (s *Shaper) ShapeText(text *scene.Text) (ShapedText, bool) {
	if text == nil || text.FontSize <= 0 {
		return ShapedText{}, false
	}
	tf := s.Lookup(text.FontFamily)
	if tf == nil {
		return ShapedText{}, false
	}
	runes := []rune(norm.NFC.String(text.Text))
	if len(runes) == 0 {
		return ShapedText{}, false
	}

	script := DetectScript(runes)
	// One font unit per pixel keeps HarfBuzz advances in design units, the
	// same numbers GlyphAdvance scales.
	size := fixed.Int26_6(tf.UnitsPerEm() * 64)
	output := s.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      tf.Face(),
		Size:      size,
		Script:    script,
		Language:  language.DefaultLanguage(),
	})
	if len(output.Glyphs) == 0 {
		return ShapedText{}, false
	}

	scale := tf.scale(text.FontSize)
	glyphs := make([]GlyphID, len(output.Glyphs))
	xs := make([]float32, len(output.Glyphs))
	var pen float32
	for i, g := range output.Glyphs {
		glyphs[i] = GlyphID(g.GlyphID)
		xs[i] = pen + fixedToFloat(g.XOffset)*scale
		pen += fixedToFloat(g.XAdvance)*scale + text.LetterSpacing
	}
	width := pen - text.LetterSpacing

	var shift float32
	switch text.TextAnchor {
	case scene.AnchorCenter:
		shift = -width / 2
	case scene.AnchorEnd:
		shift = -width
	}
	anchors := make([]scene.Point, len(xs))
	for i := range xs {
		xs[i] += text.Position.X + shift
		anchors[i] = scene.Point{X: xs[i], Y: text.Position.Y}
	}

	run := ShapedRun{
		Font:        Font{Typeface: tf, Size: text.FontSize},
		Glyphs:      glyphs,
		Positioning: PositionHorizontal,
		Positions:   xs,
		OffsetY:     text.Position.Y,
	}
	return ShapedText{Blob: &TextBlob{Runs: []ShapedRun{run}}, Anchors: anchors}, true
}

// TextOrder lists the Text elements of doc in layer traversal order:
// contents (groups depth first), mask, composition layers, then children.
// A composition shared by several layers is visited once.
func TextOrder(doc *scene.Document) []*scene.Text {
	var order []*scene.Text
	seen := make(map[*scene.Composition]struct{})
	var visitElements func([]scene.Element)
	visitElements = func(elements []scene.Element) {
		for _, e := range elements {
			switch n := e.(type) {
			case *scene.Text:
				order = append(order, n)
			case *scene.Group:
				visitElements(n.Elements)
			}
		}
	}
	var visitLayer func(*scene.Layer)
	visitLayer = func(l *scene.Layer) {
		if l == nil {
			return
		}
		visitElements(l.Contents)
		visitLayer(l.Mask)
		if c := l.Composition; c != nil {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				for _, cl := range c.Layers {
					visitLayer(cl)
				}
			}
		}
		for _, child := range l.Children {
			visitLayer(child)
		}
	}
	for _, l := range doc.Layers {
		visitLayer(l)
	}
	return order
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the most frequent script among runes, Latin when
// none is recognised. Ties keep the script seen first.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	bestScript := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			bestScript = script
		}
	}
	return bestScript
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Bengali, r):
		return language.Bengali
	case unicode.Is(unicode.Gurmukhi, r):
		return language.Gurmukhi
	case unicode.Is(unicode.Gujarati, r):
		return language.Gujarati
	case unicode.Is(unicode.Oriya, r):
		return language.Oriya
	case unicode.Is(unicode.Tamil, r):
		return language.Tamil
	case unicode.Is(unicode.Telugu, r):
		return language.Telugu
	case unicode.Is(unicode.Kannada, r):
		return language.Kannada
	case unicode.Is(unicode.Malayalam, r):
		return language.Malayalam
	case unicode.Is(unicode.Sinhala, r):
		return language.Sinhala
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Tibetan, r):
		return language.Tibetan
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
