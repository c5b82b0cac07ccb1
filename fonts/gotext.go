package fonts

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font/sfnt"
	_ "golang.org/x/image/tiff"

	"github.com/wudi/pagxkit/scene"
)

// GoTextTypeface is a Typeface backed by a parsed TrueType/OpenType face.
type GoTextTypeface struct {
	name string
	face *font.Face
	upem int
}

// LoadTypeface parses a TrueType/OpenType font. When name is empty the
// family name recorded in the font is used.
func LoadTypeface(name string, data []byte) (*GoTextTypeface, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	upem := int(face.Upem())
	if upem == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = familyName(data)
	}
	return &GoTextTypeface{name: name, face: face, upem: upem}, nil
}

// LoadTypefaceFile reads and parses the font file at path.
func LoadTypefaceFile(path string) (*GoTextTypeface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return LoadTypeface("", data)
}

func familyName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "Unknown"
	}
	buf := &sfnt.Buffer{}
	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily, sfnt.NameIDPostScript} {
		if s, err := f.Name(buf, id); err == nil && s != "" {
			return s
		}
	}
	return "Unknown"
}

func (t *GoTextTypeface) Name() string     { return t.name }
func (t *GoTextTypeface) UnitsPerEm() int  { return t.upem }
func (t *GoTextTypeface) Face() *font.Face { return t.face }

func (t *GoTextTypeface) scale(size float32) float32 {
	return size / float32(t.upem)
}

func (t *GoTextTypeface) GlyphPath(id GlyphID, size float32) (*scene.PathData, bool) {
	outline, ok := t.face.GlyphData(font.GID(id)).(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		return nil, false
	}
	s := t.scale(size)
	path := &scene.PathData{}
	open := false
	for _, seg := range outline.Segments {
		a := seg.Args
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			if open {
				path.Close()
			}
			path.MoveTo(a[0].X*s, -a[0].Y*s)
			open = true
		case opentype.SegmentOpLineTo:
			path.LineTo(a[0].X*s, -a[0].Y*s)
		case opentype.SegmentOpQuadTo:
			path.QuadTo(a[0].X*s, -a[0].Y*s, a[1].X*s, -a[1].Y*s)
		case opentype.SegmentOpCubeTo:
			path.CubicTo(a[0].X*s, -a[0].Y*s, a[1].X*s, -a[1].Y*s, a[2].X*s, -a[2].Y*s)
		}
	}
	if open {
		path.Close()
	}
	return path, !path.IsEmpty()
}

// GlyphImage decodes the color bitmap of a glyph. The matrix places the
// image over the glyph's ink box; without extents the bitmap is assumed to
// span one em above the baseline.
func (t *GoTextTypeface) GlyphImage(id GlyphID, size float32) (image.Image, scene.Matrix, bool) {
	gid := font.GID(id)
	bitmap, ok := t.face.GlyphData(gid).(font.GlyphBitmap)
	if !ok {
		return nil, scene.Matrix{}, false
	}
	switch bitmap.Format {
	case font.PNG, font.JPG, font.TIFF:
	default:
		return nil, scene.Matrix{}, false
	}
	img, _, err := image.Decode(bytes.NewReader(bitmap.Data))
	if err != nil {
		return nil, scene.Matrix{}, false
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return nil, scene.Matrix{}, false
	}
	s := t.scale(size)
	if ext, ok := t.face.GlyphExtents(gid); ok && ext.Width != 0 && ext.Height != 0 {
		return img, scene.Matrix{
			A:  abs32(ext.Width) * s / float32(w),
			D:  abs32(ext.Height) * s / float32(h),
			Tx: ext.XBearing * s,
			Ty: -ext.YBearing * s,
		}, true
	}
	k := size / float32(h)
	return img, scene.Matrix{A: k, D: k, Ty: -size}, true
}

func (t *GoTextTypeface) GlyphAdvance(id GlyphID, size float32) float32 {
	return t.face.HorizontalAdvance(font.GID(id)) * t.scale(size)
}

// NominalGlyph maps a rune through the font's cmap.
func (t *GoTextTypeface) NominalGlyph(r rune) (GlyphID, bool) {
	gid, ok := t.face.NominalGlyph(r)
	return GlyphID(gid), ok
}
