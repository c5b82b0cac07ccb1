package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	xsderrors "github.com/jacoelho/xsd/errors"
)

const validDocument = `<?xml version="1.0" encoding="UTF-8"?>
<pagx version="1.0" width="200" height="100">
  <Layer id="main" alpha="0.5" blendMode="screen" mask="@clip">
    <Rectangle center="50,50" size="80,60"/>
    <Path data="@square"/>
    <Fill color="@red"/>
    <Stroke color="#00FF00" width="2" dashes="4,2" cap="round"/>
    <Text text="hi" fontSize="24">
      <GlyphRun font="@font1" glyphs="1,2" positions="0,0;10,0"/>
    </Text>
    <Group position="5,5">
      <Ellipse/>
      <Fill>
        <LinearGradient endPoint="100,0">
          <ColorStop offset="0" color="#000"/>
          <ColorStop offset="1" color="srgb(0.3, 0.2, 0.1)"/>
        </LinearGradient>
      </Fill>
    </Group>
    <DropShadowStyle offsetX="2" color="#00000080"/>
    <BlurFilter blurX="3" blurY="3"/>
  </Layer>
  <Layer id="clip" visible="false"/>
  <Resources>
    <SolidColor id="red" color="#FF0000"/>
    <PathData id="square" data="M0 0H10V10Z"/>
    <Font id="font1" unitsPerEm="1000">
      <Glyph path="M0 0L500 0L500 700Z" advance="600"/>
    </Font>
  </Resources>
</pagx>
`

func TestValidateAcceptsDocument(t *testing.T) {
	if err := Validate(strings.NewReader(validDocument)); err != nil {
		t.Fatalf("expected document to validate, got %v", err)
	}
}

func TestValidateRejectsUnknownElement(t *testing.T) {
	doc := `<pagx width="1" height="1">
  <Layer>
    <Sparkle/>
  </Layer>
</pagx>`
	err := Validate(strings.NewReader(doc))
	var schemaErr *Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(schemaErr.Violations) == 0 {
		t.Fatalf("expected at least one violation")
	}
	if _, ok := xsderrors.AsValidations(err); !ok {
		t.Errorf("expected violations to be reachable through the validator's list type")
	}
}

func TestValidateRejectsBadAttributeValues(t *testing.T) {
	tests := []string{
		`<pagx><Layer blendMode="sparkle"/></pagx>`,
		`<pagx><Layer><Fill color="red"/></Layer></pagx>`,
		`<pagx><Layer><Rectangle size="wide"/></Layer></pagx>`,
		`<pagx><Layer visible="maybe"/></pagx>`,
		`<pagx width="ten"/>`,
	}
	for _, doc := range tests {
		var schemaErr *Error
		if err := Validate(strings.NewReader(doc)); !errors.As(err, &schemaErr) {
			t.Errorf("%s: expected *Error, got %v", doc, err)
		}
	}
}

func TestValidateMalformedInput(t *testing.T) {
	err := Validate(strings.NewReader(`<pagx><Layer></pagx>`))
	if err == nil {
		t.Fatalf("expected an error")
	}
	var schemaErr *Error
	if errors.As(err, &schemaErr) {
		t.Errorf("malformed input should not be reported as a schema violation: %v", err)
	}
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pagx")
	if err := os.WriteFile(path, []byte(validDocument), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := ValidateFile(path); err != nil {
		t.Fatalf("expected file to validate, got %v", err)
	}
	if err := ValidateFile(filepath.Join(t.TempDir(), "missing.pagx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Violations: []xsderrors.Validation{
		{Code: "cvc-elt.1", Message: "element not declared", Line: 3},
		{Code: "cvc-datatype-valid", Message: "bad float", Line: 3},
		{Code: "cvc-complex-type.4", Message: "missing attribute", Line: 7},
		{Message: "no position"},
	}}
	msg := err.Error()
	if !strings.HasPrefix(msg, "schema: 4 violations") {
		t.Errorf("unexpected summary: %s", msg)
	}
	if !strings.Contains(msg, "line 3: [cvc-elt.1] element not declared") {
		t.Errorf("expected line-prefixed violation in %s", msg)
	}
	if msgs := err.Messages(); len(msgs) != 4 || msgs[3] != "no position" {
		t.Errorf("unexpected messages: %q", msgs)
	}
	lines := err.Lines()
	if len(lines) != 2 || lines[0] != 3 || lines[1] != 7 {
		t.Errorf("expected lines [3 7], got %v", lines)
	}

	single := &Error{Violations: err.Violations[3:]}
	if got := single.Error(); got != "schema: no position" {
		t.Errorf("unexpected single violation message: %s", got)
	}
}

func TestSchemaCompilesOnce(t *testing.T) {
	a, err := Schema()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	b, _ := Schema()
	if a != b {
		t.Errorf("expected the compiled schema to be shared")
	}
}
