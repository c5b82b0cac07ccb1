package scene

import (
	"fmt"
	"math"
	stdstrconv "strconv"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// PathVerb is a path drawing command.
type PathVerb uint8

const (
	VerbMove PathVerb = iota
	VerbLine
	VerbQuad
	VerbCubic
	VerbClose
)

// pointCount is the number of points each verb consumes from Points.
func (v PathVerb) pointCount() int {
	switch v {
	case VerbMove, VerbLine:
		return 1
	case VerbQuad:
		return 2
	case VerbCubic:
		return 3
	}
	return 0
}

// PathData is a reusable path geometry resource. Points holds x,y pairs
// consumed by Verbs in order. Two PathData nodes with equal verbs and points
// are interchangeable.
type PathData struct {
	base
	Verbs  []PathVerb
	Points []float32
}

func (*PathData) NodeType() NodeType { return NodePathData }

func (p *PathData) MoveTo(x, y float32) {
	p.Verbs = append(p.Verbs, VerbMove)
	p.Points = append(p.Points, x, y)
}

func (p *PathData) LineTo(x, y float32) {
	p.Verbs = append(p.Verbs, VerbLine)
	p.Points = append(p.Points, x, y)
}

func (p *PathData) QuadTo(cx, cy, x, y float32) {
	p.Verbs = append(p.Verbs, VerbQuad)
	p.Points = append(p.Points, cx, cy, x, y)
}

func (p *PathData) CubicTo(c1x, c1y, c2x, c2y, x, y float32) {
	p.Verbs = append(p.Verbs, VerbCubic)
	p.Points = append(p.Points, c1x, c1y, c2x, c2y, x, y)
}

func (p *PathData) Close() {
	p.Verbs = append(p.Verbs, VerbClose)
}

// IsEmpty reports whether the path draws nothing.
func (p *PathData) IsEmpty() bool {
	return p == nil || len(p.Verbs) == 0
}

// Equal reports structural equality of the geometry. Identifiers are ignored.
func (p *PathData) Equal(o *PathData) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	if len(p.Verbs) != len(o.Verbs) || len(p.Points) != len(o.Points) {
		return false
	}
	for i := range p.Verbs {
		if p.Verbs[i] != o.Verbs[i] {
			return false
		}
	}
	for i := range p.Points {
		if p.Points[i] != o.Points[i] {
			return false
		}
	}
	return true
}

// Segment is one decoded verb with its points, the current point included as
// Points[0] for every verb but Move.
type Segment struct {
	Verb   PathVerb
	Points [4]Point
}

// Segments decodes the path into absolute segments.
func (p *PathData) Segments() []Segment {
	if p == nil {
		return nil
	}
	segments := make([]Segment, 0, len(p.Verbs))
	var current, start Point
	i := 0
	for _, verb := range p.Verbs {
		n := verb.pointCount()
		if i+2*n > len(p.Points) {
			break
		}
		seg := Segment{Verb: verb}
		switch verb {
		case VerbMove:
			seg.Points[0] = Point{p.Points[i], p.Points[i+1]}
			current, start = seg.Points[0], seg.Points[0]
		case VerbClose:
			seg.Points[0] = current
			seg.Points[1] = start
			current = start
		default:
			seg.Points[0] = current
			for k := 0; k < n; k++ {
				seg.Points[k+1] = Point{p.Points[i+2*k], p.Points[i+2*k+1]}
			}
			current = seg.Points[n]
		}
		i += 2 * n
		segments = append(segments, seg)
	}
	return segments
}

// Bounds returns the bounding box of all points, control points included.
func (p *PathData) Bounds() Rect {
	if p == nil || len(p.Points) < 2 {
		return Rect{}
	}
	r := Rect{Left: p.Points[0], Top: p.Points[1], Right: p.Points[0], Bottom: p.Points[1]}
	for i := 2; i+1 < len(p.Points); i += 2 {
		x, y := p.Points[i], p.Points[i+1]
		r.Left = min(r.Left, x)
		r.Right = max(r.Right, x)
		r.Top = min(r.Top, y)
		r.Bottom = max(r.Bottom, y)
	}
	return r
}

// Transform applies m to every point in place.
func (p *PathData) Transform(m Matrix) {
	for i := 0; i+1 < len(p.Points); i += 2 {
		pt := m.MapPoint(Point{p.Points[i], p.Points[i+1]})
		p.Points[i], p.Points[i+1] = pt.X, pt.Y
	}
}

// String encodes the path as SVG path data using absolute commands.
func (p *PathData) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	i := 0
	for _, verb := range p.Verbs {
		n := verb.pointCount()
		if i+2*n > len(p.Points) {
			break
		}
		switch verb {
		case VerbMove:
			b.WriteByte('M')
		case VerbLine:
			b.WriteByte('L')
		case VerbQuad:
			b.WriteByte('Q')
		case VerbCubic:
			b.WriteByte('C')
		case VerbClose:
			b.WriteByte('Z')
		}
		for k := 0; k < 2*n; k++ {
			if k > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(FormatFloat(p.Points[i+k]))
		}
		i += 2 * n
	}
	return b.String()
}

// FormatFloat renders v with the shortest representation that round-trips
// as a float32.
func FormatFloat(v float32) string {
	if v == 0 {
		return "0"
	}
	return stdstrconv.FormatFloat(float64(v), 'f', -1, 32)
}

// ParsePathData decodes SVG path data. Relative commands, shorthand curves and
// elliptical arcs are converted to absolute move/line/quad/cubic verbs.
func ParsePathData(s string) (*PathData, error) {
	p := &PathData{}
	path := []byte(s)
	i := skipCommaWhitespace(path)
	if i == len(path) {
		return p, nil
	}
	if !isCommand(path[i]) {
		return nil, fmt.Errorf("path data: expected command at offset %d", i)
	}

	var f [7]float32
	var current, start, lastCtrl Point
	prevCmd := byte('z')
	for {
		i += skipCommaWhitespace(path[i:])
		if i >= len(path) {
			break
		}

		cmd := prevCmd
		repeat := true
		if cmd == 'z' || cmd == 'Z' || !isNumberStart(path[i]) {
			cmd = path[i]
			repeat = false
			i++
			i += skipCommaWhitespace(path[i:])
		}
		upper := cmd &^ 0x20
		n, ok := argCount[upper]
		if !ok || !isCommand(cmd) {
			return nil, fmt.Errorf("path data: unknown command %q at offset %d", cmd, i-1)
		}
		for j := 0; j < n; j++ {
			if upper == 'A' && (j == 3 || j == 4) {
				// Arc flags are single characters and may be packed
				// together with the next number, as in "a10 10 0 0110 10".
				if i >= len(path) || (path[i] != '0' && path[i] != '1') {
					return nil, fmt.Errorf("path data: arc flag must be 0 or 1 at offset %d", i)
				}
				f[j] = float32(path[i] - '0')
				i++
			} else {
				v, m := strconv.ParseFloat(path[i:])
				if m == 0 {
					if repeat && j == 0 {
						return nil, fmt.Errorf("path data: unknown command %q at offset %d", path[i], i)
					}
					return nil, fmt.Errorf("path data: expected number at offset %d", i)
				}
				f[j] = float32(v)
				i += m
			}
			i += skipCommaWhitespace(path[i:])
		}

		rel := cmd != upper
		abs := func(x, y float32) Point {
			if rel {
				return Point{x + current.X, y + current.Y}
			}
			return Point{x, y}
		}
		switch upper {
		case 'M':
			current = abs(f[0], f[1])
			start = current
			p.MoveTo(current.X, current.Y)
			// Subsequent coordinate pairs are implicit line-tos.
			cmd = 'L' | cmd&0x20
		case 'Z':
			p.Close()
			current = start
		case 'L':
			current = abs(f[0], f[1])
			p.LineTo(current.X, current.Y)
		case 'H':
			if rel {
				f[0] += current.X
			}
			current.X = f[0]
			p.LineTo(current.X, current.Y)
		case 'V':
			if rel {
				f[0] += current.Y
			}
			current.Y = f[0]
			p.LineTo(current.X, current.Y)
		case 'C':
			c1, c2, end := abs(f[0], f[1]), abs(f[2], f[3]), abs(f[4], f[5])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, current = c2, end
		case 'S':
			c1 := current
			if prev := prevCmd &^ 0x20; prev == 'C' || prev == 'S' {
				c1 = Point{2*current.X - lastCtrl.X, 2*current.Y - lastCtrl.Y}
			}
			c2, end := abs(f[0], f[1]), abs(f[2], f[3])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, current = c2, end
		case 'Q':
			c, end := abs(f[0], f[1]), abs(f[2], f[3])
			p.QuadTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, current = c, end
		case 'T':
			c := current
			if prev := prevCmd &^ 0x20; prev == 'Q' || prev == 'T' {
				c = Point{2*current.X - lastCtrl.X, 2*current.Y - lastCtrl.Y}
			}
			end := abs(f[0], f[1])
			p.QuadTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, current = c, end
		case 'A':
			end := abs(f[5], f[6])
			arcTo(p, current, f[0], f[1], f[2], f[3] == 1, f[4] == 1, end)
			current = end
		}
		prevCmd = cmd
	}
	return p, nil
}

// argCount is the number of values each command consumes.
var argCount = map[byte]int{
	'M': 2, 'Z': 0, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7,
}

func isCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) >= 0
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t') {
		i++
	}
	return i
}

// arcTo appends an SVG elliptical arc as cubic segments (SVG 1.1 F.6).
func arcTo(p *PathData, from Point, rx, ry, rotation float32, largeArc, sweep bool, to Point) {
	if from == to {
		return
	}
	if rx == 0 || ry == 0 {
		p.LineTo(to.X, to.Y)
		return
	}
	x1, y1 := float64(from.X), float64(from.Y)
	x2, y2 := float64(to.X), float64(to.Y)
	rxf, ryf := math.Abs(float64(rx)), math.Abs(float64(ry))
	phi := float64(rotation) * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx, dy := (x1-x2)/2, (y1-y2)/2
	x1p := cosPhi*dx + sinPhi*dy
	y1p := -sinPhi*dx + cosPhi*dy

	lambda := x1p*x1p/(rxf*rxf) + y1p*y1p/(ryf*ryf)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rxf *= s
		ryf *= s
	}
	num := rxf*rxf*ryf*ryf - rxf*rxf*y1p*y1p - ryf*ryf*x1p*x1p
	den := rxf*rxf*y1p*y1p + ryf*ryf*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rxf * y1p / ryf
	cyp := -coef * ryf * x1p / rxf
	cx := cosPhi*cxp - sinPhi*cyp + (x1+x2)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y1+y2)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	theta1 := angle(1, 0, (x1p-cxp)/rxf, (y1p-cyp)/ryf)
	delta := angle((x1p-cxp)/rxf, (y1p-cyp)/ryf, (-x1p-cxp)/rxf, (-y1p-cyp)/ryf)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)
	point := func(t float64) (float64, float64) {
		x := rxf * math.Cos(t)
		y := ryf * math.Sin(t)
		return cosPhi*x - sinPhi*y + cx, sinPhi*x + cosPhi*y + cy
	}
	deriv := func(t float64) (float64, float64) {
		x := -rxf * math.Sin(t)
		y := ryf * math.Cos(t)
		return cosPhi*x - sinPhi*y, sinPhi*x + cosPhi*y
	}
	t := theta1
	for i := 0; i < segments; i++ {
		t2 := t + step
		sx, sy := point(t)
		ex, ey := point(t2)
		d1x, d1y := deriv(t)
		d2x, d2y := deriv(t2)
		if i == segments-1 {
			ex, ey = x2, y2
		}
		p.CubicTo(
			snap(sx+k*d1x), snap(sy+k*d1y),
			snap(ex-k*d2x), snap(ey-k*d2y),
			snap(ex), snap(ey),
		)
		t = t2
	}
}

// snap flushes trigonometric noise around zero.
func snap(v float64) float32 {
	if math.Abs(v) < 1e-9 {
		return 0
	}
	return float32(v)
}
