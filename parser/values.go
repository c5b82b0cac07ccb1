package parser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wudi/pagxkit/scene"
)

var errMalformedColor = errors.New("malformed color")

// splitList splits on commas and whitespace, dropping empty fields.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func parseFloatList(s string) ([]float32, error) {
	fields := splitList(s)
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parsePoint(s string) (scene.Point, error) {
	v, err := parseFloatList(s)
	if err != nil {
		return scene.Point{}, err
	}
	if len(v) != 2 {
		return scene.Point{}, fmt.Errorf("expected 2 numbers, got %d", len(v))
	}
	return scene.Point{X: v[0], Y: v[1]}, nil
}

// parsePointList decodes "x,y;x,y;...".
func parsePointList(s string) ([]scene.Point, error) {
	var out []scene.Point
	for _, item := range strings.Split(s, ";") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		p, err := parsePoint(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseMatrix(s string) (scene.Matrix, error) {
	v, err := parseFloatList(s)
	if err != nil {
		return scene.Matrix{}, err
	}
	if len(v) != 6 {
		return scene.Matrix{}, fmt.Errorf("expected 6 numbers, got %d", len(v))
	}
	return scene.Matrix{A: v[0], B: v[1], C: v[2], D: v[3], Tx: v[4], Ty: v[5]}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseColor decodes #RGB, #RRGGBB, #RRGGBBAA, srgb(r, g, b[, a]) and
// p3(r, g, b[, a]). Display P3 components are kept as given.
func ParseColor(s string) (scene.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	for _, prefix := range []string{"srgb(", "p3("} {
		if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, ")") {
			continue
		}
		v, err := parseFloatList(s[len(prefix) : len(s)-1])
		if err != nil {
			return scene.Color{}, fmt.Errorf("%w: %v", errMalformedColor, err)
		}
		if len(v) != 3 && len(v) != 4 {
			return scene.Color{}, fmt.Errorf("%w: %q", errMalformedColor, s)
		}
		c := scene.Color{R: v[0], G: v[1], B: v[2], A: 1}
		if len(v) == 4 {
			c.A = v[3]
		}
		return c, nil
	}
	return scene.Color{}, fmt.Errorf("%w: %q", errMalformedColor, s)
}

func parseHexColor(hex string) (scene.Color, error) {
	digits := make([]float32, 0, 8)
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return scene.Color{}, fmt.Errorf("%w: #%s", errMalformedColor, hex)
		}
		digits = append(digits, float32(d))
	}
	switch len(digits) {
	case 3:
		return scene.Color{R: digits[0] * 17 / 255, G: digits[1] * 17 / 255, B: digits[2] * 17 / 255, A: 1}, nil
	case 6, 8:
		c := scene.Color{
			R: (digits[0]*16 + digits[1]) / 255,
			G: (digits[2]*16 + digits[3]) / 255,
			B: (digits[4]*16 + digits[5]) / 255,
			A: 1,
		}
		if len(digits) == 8 {
			c.A = (digits[6]*16 + digits[7]) / 255
		}
		return c, nil
	}
	return scene.Color{}, fmt.Errorf("%w: #%s", errMalformedColor, hex)
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// decodeDataURI returns the payload of a data: URI. ok is false when s is
// not a data URI.
func decodeDataURI(s string) (data []byte, ok bool, err error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, false, nil
	}
	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return nil, true, errors.New("data URI without payload")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, true, fmt.Errorf("decode base64 payload: %w", err)
		}
		return data, true, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, true, fmt.Errorf("decode data URI: %w", err)
	}
	return []byte(text), true, nil
}
