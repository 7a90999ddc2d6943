package validation

import (
	"strings"
	"testing"
)

type sampleParams struct {
	Name  string `json:"name" validate:"required,min=2,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
	Scope string `json:"scope" validate:"oneof=global organization customer"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	err := Struct(v, sampleParams{Name: "Main", Scope: "global"})
	if err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestStruct_CollectsAllViolations(t *testing.T) {
	v := New()
	err := Struct(v, sampleParams{Email: "not-an-email", Scope: "bogus", Count: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(ve.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
	if ve.Fields["name"] != "is required" {
		t.Errorf("name: got %q", ve.Fields["name"])
	}
	if ve.Fields["email"] != "must be a valid email address" {
		t.Errorf("email: got %q", ve.Fields["email"])
	}
	if !strings.Contains(ve.Fields["scope"], "must be one of") {
		t.Errorf("scope: got %q", ve.Fields["scope"])
	}
	if ve.Fields["count"] != "must be at least 0" {
		t.Errorf("count: got %q", ve.Fields["count"])
	}
}

func TestStruct_UsesJSONFieldNames(t *testing.T) {
	v := New()
	err := Struct(v, sampleParams{Name: strings.Repeat("x", 11), Scope: "global"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, _ := AsError(err)
	if _, ok := ve.Fields["Name"]; ok {
		t.Fatal("expected json name, found Go field name")
	}
	if msg := ve.Fields["name"]; msg != "must be at most 10 characters" {
		t.Fatalf("name: got %q", msg)
	}
}

func TestErrorMessageListsFields(t *testing.T) {
	e := &Error{Fields: map[string]string{"b": "x", "a": "y"}}
	if got := e.Error(); got != "validation failed on: a, b" {
		t.Fatalf("unexpected message: %q", got)
	}
}
