// Package schema validates PAGX documents against the embedded pagx.xsd.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
)

// ErrMalformed is returned when the input is not well-formed XML.
var ErrMalformed = errors.New("malformed document")

//go:embed pagx.xsd
var files embed.FS

var compiled = sync.OnceValues(func() (*xsd.Schema, error) {
	return xsd.Load(files, "pagx.xsd")
})

// Error reports every schema violation found in a document.
type Error struct {
	Violations []xsderrors.Validation
}

func (e *Error) Error() string {
	switch len(e.Violations) {
	case 0:
		return "schema: document is invalid"
	case 1:
		return "schema: " + describe(e.Violations[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema: %d violations", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(describe(v))
	}
	return b.String()
}

// Unwrap exposes the violations as the validator's list error.
func (e *Error) Unwrap() error {
	return xsderrors.ValidationList(e.Violations)
}

// Messages returns one line per violation, prefixed with its line number
// when known.
func (e *Error) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = describe(v)
	}
	return out
}

// Lines returns the distinct line numbers that carry violations, in report
// order. Violations without position information are left out.
func (e *Error) Lines() []int {
	var lines []int
	seen := make(map[int]bool)
	for _, v := range e.Violations {
		if v.Line > 0 && !seen[v.Line] {
			seen[v.Line] = true
			lines = append(lines, v.Line)
		}
	}
	return lines
}

func describe(v xsderrors.Validation) string {
	msg := v.Message
	if v.Code != "" {
		msg = "[" + v.Code + "] " + msg
	}
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s", v.Line, msg)
	}
	return msg
}

// Schema returns the compiled PAGX schema. Compilation happens once per
// process.
func Schema() (*xsd.Schema, error) {
	s, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

// Validate checks the document read from r. Violations are returned as
// *Error; malformed input and I/O failures are returned as-is.
func Validate(r io.Reader) error {
	s, err := Schema()
	if err != nil {
		return err
	}
	return classify(s.Validate(r))
}

// ValidateFile checks the document at path.
func ValidateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	defer f.Close()
	return Validate(f)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		return fmt.Errorf("schema: %w", err)
	}
	for _, v := range violations {
		if v.Code == string(xsderrors.ErrXMLParse) {
			return fmt.Errorf("schema: %w", errors.Join(ErrMalformed, err))
		}
	}
	return &Error{Violations: violations}
}
