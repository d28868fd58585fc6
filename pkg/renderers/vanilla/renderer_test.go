package vanilla

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

func sampleSchema() model.FormSchema {
	return model.FormSchema{
		ID:   "form-1",
		Name: "Signup",
		Fields: []model.FieldDefinition{
			{ID: "email", Type: model.FieldTypeText, Label: "Email", Validation: model.ValidationRules{Required: true, Email: true}},
			{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio", Validation: model.ValidationRules{MaxLength: model.IntPtr(200)}},
			{ID: "pw", Type: model.FieldTypePassword, Label: "Password", Validation: model.ValidationRules{MinLength: model.IntPtr(8), PasswordRule: true}},
			{ID: "color", Type: model.FieldTypeSelect, Label: "Color", Options: []string{"red", "blue"}},
			{ID: "size", Type: model.FieldTypeRadio, Label: "Size", Options: []string{"S", "M"}},
			{ID: "tags", Type: model.FieldTypeCheckbox, Label: "Tags", Options: []string{"go", "js", "rs"}},
			{ID: "dob", Type: model.FieldTypeDate, Label: "Date of Birth"},
			{ID: "age", Type: model.FieldTypeNumber, Label: "Age", Derived: &model.DerivationSpec{Formula: model.FormulaAgeFromDOB, ParentFields: []string{"dob"}}},
		},
	}
}

func renderString(t *testing.T, r *Renderer, schema model.FormSchema, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), schema, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.Name() != "vanilla" {
		t.Fatalf("name = %q", r.Name())
	}
	if r.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", r.ContentType())
	}
}

func TestRenderer_RendersControls(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{
		Values: model.FormValues{
			"email": "ada@example.com",
			"color": "blue",
			"size":  "M",
			"tags":  []string{"go", "rs"},
			"dob":   "2000-01-01",
			"age":   24,
		},
	})

	assertContains(t, html,
		`method="POST"`,
		`<h2 class="fb-header">Signup</h2>`,
		`type="email" id="fb-email" name="email" value="ada@example.com" required`,
		`<textarea id="fb-bio" name="bio" maxlength="200">`,
		`type="password" id="fb-pw" name="pw" value="" minlength="8"`,
		`<option value="blue" selected>blue</option>`,
		`<input type="radio" name="size" value="M" checked>`,
		`<input type="checkbox" name="tags" value="go" checked>`,
		`<input type="checkbox" name="tags" value="rs" checked>`,
		`type="date" id="fb-dob" name="dob" value="2000-01-01"`,
		`value="24" readonly aria-readonly="true"`,
		`data-formula="ageFromDOB" data-parents="dob"`,
		`<button type="submit">Submit</button>`,
	)
	if strings.Contains(html, `value="js" checked`) {
		t.Fatalf("unselected checkbox rendered as checked")
	}
}

func TestRenderer_FieldOrderFollowsSchema(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{})
	last := -1
	for _, field := range sampleSchema().Fields {
		idx := strings.Index(html, `data-field-id="`+field.ID+`"`)
		if idx < 0 {
			t.Fatalf("field %q missing", field.ID)
		}
		if idx < last {
			t.Fatalf("field %q rendered out of order", field.ID)
		}
		last = idx
	}
}

func TestRenderer_RevealedPassword(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{
		Values:          model.FormValues{"pw": "secret"},
		RevealPasswords: map[string]bool{"pw": true},
	})
	assertContains(t, html,
		`type="text" id="fb-pw" name="pw" value="secret"`,
		`aria-pressed="true">Hide</button>`,
	)
}

func TestRenderer_ErrorsInlineAndFormLevel(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{
		Errors: model.FormErrors{
			"email":   "Please enter a valid email address",
			"unknown": "Something went wrong",
		},
	})
	assertContains(t, html,
		`fb-field fb-field--invalid" data-field-id="email"`,
		`aria-invalid="true" aria-describedby="fb-email-error"`,
		`<p class="fb-error" id="fb-email-error" role="alert">Please enter a valid email address</p>`,
		`<ul class="fb-errors" role="alert"><li>Something went wrong</li></ul>`,
	)
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	schema := model.FormSchema{
		Name:   "<script>alert(1)</script>",
		Fields: []model.FieldDefinition{{ID: "q", Type: model.FieldTypeText, Label: "Q"}},
	}
	html := renderString(t, r, schema, render.RenderOptions{Values: model.FormValues{"q": `"><b>`}})
	if strings.Contains(html, "<script>") || strings.Contains(html, `"><b>`) {
		t.Fatalf("expected escaped output, got:\n%s", html)
	}
}

func TestRenderer_HiddenFieldsActionAndTheme(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{
		Action:       "/forms/1",
		Method:       "get",
		HiddenFields: map[string]string{"csrf": "tok", "_method": "PUT"},
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{"--brand": "#111"},
		},
	})
	assertContains(t, html,
		`method="GET" action="/forms/1"`,
		`data-theme="acme" data-theme-variant="dark"`,
		`style="--brand: #111;"`,
		`<input type="hidden" name="_method" value="PUT">`,
		`<input type="hidden" name="csrf" value="tok">`,
	)
	if strings.Index(html, `name="_method"`) > strings.Index(html, `name="csrf"`) {
		t.Fatalf("hidden fields not sorted")
	}
}

func TestRenderer_InlineStylesheet(t *testing.T) {
	r, err := New(WithInlineStylesheet(true), WithSubmitLabel("Send"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{})
	assertContains(t, html, "<style>", ".fb-form", `<button type="submit">Send</button>`)
}

func TestRenderer_CustomTemplatesFS(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tmpl": {Data: []byte(`{% for field in fields %}[{{ field.id }}:{{ field.input_type }}]{% endfor %}`)},
	}
	r, err := New(WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{})
	if !strings.HasPrefix(html, "[email:email][bio:text][pw:password]") {
		t.Fatalf("unexpected output %q", html)
	}
}

func TestRenderer_FieldPartialResolvesNextToForm(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tmpl":  {Data: []byte(`{% for field in fields %}{% include "field.tmpl" %}{% endfor %}`)},
		"templates/field.tmpl": {Data: []byte(`<{{ field.id }}>`)},
	}
	r, err := New(WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := renderString(t, r, sampleSchema(), render.RenderOptions{})
	if !strings.HasPrefix(html, "<email><bio><pw>") {
		t.Fatalf("unexpected output %q", html)
	}

	embedded, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := embedded.Render(context.Background(), sampleSchema(), render.RenderOptions{}); err != nil {
		t.Fatalf("embedded templates: %v", err)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, sampleSchema(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAssetsFS_ServesStylesheet(t *testing.T) {
	if _, err := AssetsFS().Open(StylesheetName); err != nil {
		t.Fatalf("open stylesheet: %v", err)
	}
}

func TestControlIDs(t *testing.T) {
	if got := controlID("first name"); got != "fb-first-name" {
		t.Fatalf("controlID = %q", got)
	}
	if got := errorID("a.b"); got != "fb-a-b-error" {
		t.Fatalf("errorID = %q", got)
	}
	if got := labelID("!!"); got != "" {
		t.Fatalf("labelID = %q", got)
	}
}
