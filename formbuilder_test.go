package formbuilder

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func TestStylesheetFSContainsDefaultStylesheet(t *testing.T) {
	data, err := fs.ReadFile(StylesheetFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".fb-field") {
		t.Fatalf("expected stylesheet to style fields")
	}
}

func TestEmbeddedTemplatesIncludeFieldPartial(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/field.tmpl"); err != nil {
		t.Fatalf("expected field template: %v", err)
	}
}

func TestRenderSchemaWithPreset(t *testing.T) {
	preset, err := WithPreset([]byte("fields:\n  first:\n    label: Given name\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	out, err := RenderSchema(context.Background(), testsupport.SignupSchema(),
		model.FormValues{"first": "Ada", "last": "Lovelace"}, true, preset)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{"Given name", `value="Ada Lovelace"`, "This field is required."} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}
