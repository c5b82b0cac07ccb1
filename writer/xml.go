package writer

import (
	"bufio"
	"math"
	"strings"

	"github.com/wudi/pagxkit/scene"
)

// xmlElement is one output element. Attributes keep insertion order, which
// the encoders make canonical.
type xmlElement struct {
	name     string
	attrs    []xmlAttr
	children []*xmlElement
}

type xmlAttr struct {
	name, value string
}

func newElement(name string) *xmlElement { return &xmlElement{name: name} }

func (e *xmlElement) add(child *xmlElement) {
	if child != nil {
		e.children = append(e.children, child)
	}
}

func (e *xmlElement) set(name, value string) {
	e.attrs = append(e.attrs, xmlAttr{name, value})
}

// str sets a string attribute unless it is empty or equals def.
func (e *xmlElement) str(name, value, def string) {
	if value != "" && value != def {
		e.set(name, value)
	}
}

func (e *xmlElement) float(name string, value, def float32) {
	if value != def {
		e.set(name, scene.FormatFloat(value))
	}
}

func (e *xmlElement) int(name string, value, def int) {
	if value != def {
		e.set(name, scene.FormatFloat(float32(value)))
	}
}

func (e *xmlElement) bool(name string, value, def bool) {
	if value != def {
		if value {
			e.set(name, "true")
		} else {
			e.set(name, "false")
		}
	}
}

func (e *xmlElement) point(name string, value, def scene.Point) {
	if value != def {
		e.set(name, formatPoint(value))
	}
}

func (e *xmlElement) size(name string, value, def scene.Size) {
	e.point(name, scene.Point{X: value.Width, Y: value.Height}, scene.Point{X: def.Width, Y: def.Height})
}

func (e *xmlElement) color(name string, value, def scene.Color) {
	if value != def {
		e.set(name, FormatColor(value))
	}
}

func (e *xmlElement) matrix(name string, m scene.Matrix) {
	if m.IsIdentity() {
		return
	}
	e.set(name, formatFloats([]float32{m.A, m.B, m.C, m.D, m.Tx, m.Ty}))
}

func (e *xmlElement) floats(name string, values []float32) {
	if len(values) > 0 {
		e.set(name, formatFloats(values))
	}
}

func (e *xmlElement) points(name string, values []scene.Point) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, p := range values {
		parts[i] = formatPoint(p)
	}
	e.set(name, strings.Join(parts, ";"))
}

func formatPoint(p scene.Point) string {
	return scene.FormatFloat(p.X) + "," + scene.FormatFloat(p.Y)
}

func formatFloats(values []float32) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = scene.FormatFloat(v)
	}
	return strings.Join(parts, ",")
}

// FormatColor encodes c as uppercase #RRGGBB, with an alpha byte when the
// color is translucent. Components that do not survive 8-bit quantisation
// are written as srgb(r, g, b[, a]) instead.
func FormatColor(c scene.Color) string {
	if !quantized(c.R) || !quantized(c.G) || !quantized(c.B) || !quantized(c.A) {
		values := []float32{c.R, c.G, c.B}
		if c.A != 1 {
			values = append(values, c.A)
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = scene.FormatFloat(v)
		}
		return "srgb(" + strings.Join(parts, ", ") + ")"
	}
	const digits = "0123456789ABCDEF"
	r, g, b, a := c.RGBA8()
	out := []byte{'#',
		digits[r>>4], digits[r&15],
		digits[g>>4], digits[g&15],
		digits[b>>4], digits[b&15],
	}
	if a != 255 {
		out = append(out, digits[a>>4], digits[a&15])
	}
	return string(out)
}

// quantized reports whether v is exactly k/255 for some byte k.
func quantized(v float32) bool {
	if v < 0 || v > 1 {
		return false
	}
	k := float32(math.Round(float64(v) * 255))
	return k/255 == v
}

// render writes e and its subtree, one element per line.
func render(w *bufio.Writer, e *xmlElement, depth, indent int) {
	pad := strings.Repeat(" ", depth*indent)
	w.WriteString(pad)
	w.WriteByte('<')
	w.WriteString(e.name)
	for _, a := range e.attrs {
		w.WriteByte(' ')
		w.WriteString(a.name)
		w.WriteString(`="`)
		w.WriteString(escapeAttr(a.value))
		w.WriteByte('"')
	}
	if len(e.children) == 0 {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">\n")
	for _, c := range e.children {
		render(w, c, depth+1, indent)
	}
	w.WriteString(pad)
	w.WriteString("</")
	w.WriteString(e.name)
	w.WriteString(">\n")
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
