package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputConfigs []InputConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.inputConfigs = append(s.inputConfigs, cfg)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func signupSchema() model.FormSchema {
	return model.FormSchema{
		Name: "Signup",
		Fields: []model.FieldDefinition{
			{ID: "name", Type: model.FieldTypeText, Label: "Name", Validation: model.ValidationRules{Required: true}},
			{ID: "email", Type: model.FieldTypeText, Label: "Email", Validation: model.ValidationRules{Email: true}},
			{ID: "dob", Type: model.FieldTypeDate, Label: "Date of Birth"},
			{ID: "age", Type: model.FieldTypeNumber, Label: "Age", Derived: &model.DerivationSpec{Formula: model.FormulaAgeFromDOB, ParentFields: []string{"dob"}}},
			{ID: "color", Type: model.FieldTypeSelect, Label: "Color", Options: []string{"red", "blue"}},
			{ID: "tags", Type: model.FieldTypeCheckbox, Label: "Tags", Options: []string{"go", "js", "rs"}},
			{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio"},
			{ID: "pw", Type: model.FieldTypePassword, Label: "Password", Validation: model.ValidationRules{PasswordRule: true}},
		},
	}
}

func TestRenderer_FillsFormAndEmitsJSON(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "not-an-email", "ada@example.com", "2000-01-01"},
		selectIdx: []int{2},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"hello"},
		passwords: []string{"secret1"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := r.Render(context.Background(), signupSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got["name"] != "Ada" || got["email"] != "ada@example.com" || got["color"] != "blue" || got["bio"] != "hello" {
		t.Fatalf("unexpected values: %v", got)
	}
	if diff := cmp.Diff([]any{"go", "rs"}, got["tags"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["age"].(float64); !ok {
		t.Fatalf("expected computed age, got %v", got["age"])
	}

	joined := strings.Join(driver.infoMessages, "\n")
	if !strings.Contains(joined, DefaultTheme.ErrorPrefix+"Invalid email format.") {
		t.Fatalf("expected email error announcement, got:\n%s", joined)
	}
	if !strings.Contains(joined, DefaultTheme.DerivedPrefix+"Age: ") {
		t.Fatalf("expected derived announcement, got:\n%s", joined)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("content type = %q", r.ContentType())
	}
}

func requiredOnly() model.FormSchema {
	return model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "name", Type: model.FieldTypeText, Label: "Name", Validation: model.ValidationRules{Required: true}},
	}}
}

func TestRenderer_DeclineFixReturnsInvalidSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "", ""},
		confirm: []bool{false},
	}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = r.Render(context.Background(), requiredOnly(), render.RenderOptions{})
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}
	if driver.inputPos != 3 {
		t.Fatalf("expected 3 attempts, got %d", driver.inputPos)
	}
}

func TestRenderer_FixAfterSubmit(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "Bob"},
		confirm: []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	values, err := r.Fill(context.Background(), requiredOnly(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if values["name"] != "Bob" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestRenderer_PrefillBecomesDefault(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Grace"}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = r.Fill(context.Background(), requiredOnly(), render.RenderOptions{
		Values: model.FormValues{"name": "Ada"},
		Errors: model.FormErrors{"name": "Name already taken"},
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.inputConfigs[0].Default != "Ada" {
		t.Fatalf("default = %q", driver.inputConfigs[0].Default)
	}
	if driver.inputConfigs[0].Message != "Name *" {
		t.Fatalf("message = %q", driver.inputConfigs[0].Message)
	}
	if len(driver.infoMessages) == 0 || !strings.Contains(driver.infoMessages[0], "Name already taken") {
		t.Fatalf("expected prior error first, got %v", driver.infoMessages)
	}
}

func TestRenderer_PrettyOutputMasksPasswords(t *testing.T) {
	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "user", Type: model.FieldTypeText, Label: "User"},
		{ID: "pw", Type: model.FieldTypePassword, Label: "Password"},
	}}
	driver := &stubDriver{inputs: []string{"ada"}, passwords: []string{"hunter22"}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "User: ada\nPassword: ********\n"; got != want {
		t.Fatalf("pretty output = %q, want %q", got, want)
	}
}

func TestRenderer_FormOutputAndTransformer(t *testing.T) {
	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "tags", Type: model.FieldTypeCheckbox, Label: "Tags", Options: []string{"a", "b"}},
	}}
	driver := &stubDriver{multiIdx: [][]int{{0, 1}}}
	r, err := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatFormURLEncoded),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			values["source"] = "cli"
			return values, nil
		}),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	parsed, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := url.Values{"tags": {"a", "b"}, "source": {"cli"}}
	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_OptionalSelectAllowsNone(t *testing.T) {
	schema := model.FormSchema{Fields: []model.FieldDefinition{
		{ID: "color", Type: model.FieldTypeRadio, Label: "Color", Options: []string{"red"}},
	}}
	driver := &stubDriver{selectIdx: []int{0}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	values, err := r.Fill(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if values["color"] != "" {
		t.Fatalf("expected empty selection, got %v", values["color"])
	}
}

type abortingDriver struct{ stubDriver }

func (a *abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestRenderer_PropagatesAbort(t *testing.T) {
	r, err := New(WithPromptDriver(&abortingDriver{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := r.Render(context.Background(), requiredOnly(), render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithOutputFormat("xml")); !errors.Is(err, ErrUnknownOutputFormat) {
		t.Fatalf("expected ErrUnknownOutputFormat, got %v", err)
	}
}

func TestDerivedTracker_ReportsChangesOnce(t *testing.T) {
	fields := signupSchema().Fields
	tracker := newDerivedTracker(fields, model.FormValues{"age": ""})
	if got := tracker.changed(model.FormValues{"age": 24}); len(got) != 1 || got[0].ID != "age" {
		t.Fatalf("expected age change, got %v", got)
	}
	if got := tracker.changed(model.FormValues{"age": 24}); len(got) != 0 {
		t.Fatalf("expected no change, got %v", got)
	}
}
