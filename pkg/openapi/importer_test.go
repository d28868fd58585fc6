package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const signupDoc = `
openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths:
  /accounts:
    get:
      operationId: listAccounts
      responses:
        "200":
          description: ok
    post:
      operationId: createAccount
      summary: Create account
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email, password]
              properties:
                email:
                  type: string
                  format: email
                password:
                  type: string
                  format: password
                  minLength: 6
                firstName:
                  type: string
                  maxLength: 40
                bio:
                  type: string
                  maxLength: 1000
                dateOfBirth:
                  type: string
                  format: date
                age:
                  type: integer
                  x-formbuilder-derived:
                    formula: ageFromDOB
                    parentFields: [dateOfBirth]
                plan:
                  type: string
                  enum: [free, pro]
                  default: free
                interests:
                  type: array
                  items:
                    type: string
                    enum: [go, rust]
                newsletter:
                  type: boolean
                  title: Send me news
                address:
                  type: object
                  properties:
                    city:
                      type: string
                nickname:
                  type: string
                  x-formbuilder-label: "Call me <b>this</b>"
                  x-formbuilder-type: textarea
      responses:
        "201":
          description: created
  /ping:
    post:
      responses:
        "204":
          description: pong
`

func TestImportFields(t *testing.T) {
	result, err := NewImporter().ImportFields(context.Background(), []byte(signupDoc), "createAccount")
	if err != nil {
		t.Fatalf("ImportFields: %v", err)
	}

	want := []model.FieldDefinition{
		{ID: "email", Type: model.FieldTypeText, Label: "Email", Validation: model.ValidationRules{Required: true, Email: true}},
		{ID: "password", Type: model.FieldTypePassword, Label: "Password", Validation: model.ValidationRules{Required: true, MinLength: model.IntPtr(6)}},
		{ID: "age", Type: model.FieldTypeNumber, Label: "Age", Derived: &model.DerivationSpec{Formula: model.FormulaAgeFromDOB, ParentFields: []string{"dateOfBirth"}}},
		{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio", Validation: model.ValidationRules{MaxLength: model.IntPtr(1000)}},
		{ID: "dateOfBirth", Type: model.FieldTypeDate, Label: "Date of Birth"},
		{ID: "firstName", Type: model.FieldTypeText, Label: "First Name", Validation: model.ValidationRules{MaxLength: model.IntPtr(40)}},
		{ID: "interests", Type: model.FieldTypeCheckbox, Label: "Interests", Options: []string{"go", "rust"}},
		{ID: "newsletter", Type: model.FieldTypeRadio, Label: "Send me news", Options: []string{"true", "false"}},
		{ID: "nickname", Type: model.FieldTypeTextarea, Label: "Call me this"},
		{ID: "plan", Type: model.FieldTypeSelect, Label: "Plan", DefaultValue: "free", Options: []string{"free", "pro"}},
	}
	if diff := cmp.Diff(want, result.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"address"}, result.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
	if result.Operation.Method != http.MethodPost || result.Operation.Path != "/accounts" {
		t.Fatalf("unexpected operation %+v", result.Operation)
	}
}

func TestImportFields_Errors(t *testing.T) {
	ctx := context.Background()
	importer := NewImporter()

	if _, err := importer.ImportFields(ctx, []byte(signupDoc), "missing"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := importer.ImportFields(ctx, []byte(signupDoc), "listAccounts"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := importer.ImportFields(ctx, nil, "createAccount"); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestOperations(t *testing.T) {
	ops, err := NewImporter().Operations(context.Background(), []byte(signupDoc))
	if err != nil {
		t.Fatalf("Operations: %v", err)
	}
	var ids []string
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	if diff := cmp.Diff([]string{"listAccounts", "createAccount", "post:/ping"}, ids); diff != "" {
		t.Fatalf("operation ids (-want +got):\n%s", diff)
	}
}

func TestImportSchema_Sources(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "accounts.yaml")
	if err := os.WriteFile(path, []byte(signupDoc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	schema, err := NewImporter().ImportSchema(ctx, SourceFromFile(path), "createAccount", "")
	if err != nil {
		t.Fatalf("ImportSchema file: %v", err)
	}
	if schema.Name != "Create account" || len(schema.Fields) != 10 {
		t.Fatalf("unexpected schema %q with %d fields", schema.Name, len(schema.Fields))
	}

	files := fstest.MapFS{"specs/accounts.yaml": {Data: []byte(signupDoc)}}
	schema, err = NewImporter(WithFileSystem(files)).ImportSchema(ctx, SourceFromFS("specs/accounts.yaml"), "createAccount", "Signup")
	if err != nil {
		t.Fatalf("ImportSchema fs: %v", err)
	}
	if schema.Name != "Signup" {
		t.Fatalf("explicit name should win, got %q", schema.Name)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(signupDoc))
	}))
	defer server.Close()

	src, err := SourceFromURL(server.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("SourceFromURL: %v", err)
	}
	if _, err := NewImporter().ImportSchema(ctx, src, "createAccount", ""); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}
	if _, err := NewImporter(WithHTTPClient(server.Client())).ImportSchema(ctx, src, "createAccount", ""); err != nil {
		t.Fatalf("ImportSchema url: %v", err)
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("https://example.com/openapi.json")
	if err != nil || src.Kind() != SourceKindURL {
		t.Fatalf("expected url source, got %v, %v", src, err)
	}
	src, err = ParseSource("./specs/../openapi.yaml")
	if err != nil || src.Kind() != SourceKindFile || src.Location() != "openapi.yaml" {
		t.Fatalf("expected cleaned file source, got %v, %v", src, err)
	}
	if _, err := ParseSource(" "); err == nil {
		t.Fatalf("expected error for blank location")
	}
}
