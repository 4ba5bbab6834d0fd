package tools

import (
	"reflect"
	"strings"
	"testing"
)

func TestParam_Required(t *testing.T) {
	tests := []struct {
		name  string
		param Param
		want  bool
	}{
		{"plain field", Param{Kind: KindString}, true},
		{"optional field", Param{Kind: KindString, Optional: true}, false},
		{"string default", Param{Kind: KindString, Default: "main"}, false},
		{"zero number default", Param{Kind: KindNumber, Default: 0}, false},
		{"false default", Param{Kind: KindBoolean, Default: false}, false},
		{"empty string default", Param{Kind: KindString, Default: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.param.Required(); got != tt.want {
				t.Errorf("Required() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"branch": {Kind: KindString, Default: "main"},
		"top":    {Kind: KindNumber, Default: 20},
		"skip":   {Kind: KindNumber, Default: 0},
		"filter": {Kind: KindString, Optional: true},
	}}

	got, err := spec.Validate(map[string]any{})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	args := got.(map[string]any)

	if args["branch"] != "main" {
		t.Errorf("expected branch default main, got %v", args["branch"])
	}
	if args["top"] != 20 {
		t.Errorf("expected top default 20, got %v", args["top"])
	}
	if args["skip"] != 0 {
		t.Errorf("expected skip default 0, got %v", args["skip"])
	}
	if _, ok := args["filter"]; ok {
		t.Error("optional field without default should be absent")
	}
}

func TestValidate_NilObjectInput(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"top": {Kind: KindNumber, Default: 100},
	}}

	got, err := spec.Validate(nil)
	if err != nil {
		t.Fatalf("nil input should validate when all fields have defaults: %v", err)
	}
	if got.(map[string]any)["top"] != 100 {
		t.Errorf("expected default 100, got %v", got.(map[string]any)["top"])
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"repository": {Kind: KindString},
	}}

	_, err := spec.Validate(map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	if err.Error() != `parameter "repository": required` {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestValidate_UnknownFieldsTolerated(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"project": {Kind: KindString},
	}}

	got, err := spec.Validate(map[string]any{
		"project": "Fabrikam",
		"extra":   "ignored",
		"another": 42,
	})
	if err != nil {
		t.Fatalf("unknown fields should be tolerated: %v", err)
	}
	args := got.(map[string]any)
	if _, ok := args["extra"]; ok {
		t.Error("unknown field should not appear in validated output")
	}
	if args["project"] != "Fabrikam" {
		t.Errorf("expected project Fabrikam, got %v", args["project"])
	}
}

func TestValidate_TypeErrors(t *testing.T) {
	tests := []struct {
		name string
		spec *Param
		raw  any
		want string
	}{
		{"string gets number", &Param{Kind: KindString}, 42.0, "expected string, got number"},
		{"number gets string", &Param{Kind: KindNumber}, "7", "expected number, got string"},
		{"boolean gets string", &Param{Kind: KindBoolean}, "true", "expected boolean, got string"},
		{"array gets string", &Param{Kind: KindArray, Elem: &Param{Kind: KindNumber}}, "1,2", "expected array, got string"},
		{"object gets array", &Param{Kind: KindObject}, []any{}, "expected object, got array"},
		{"string gets null", &Param{Kind: KindString}, nil, "expected string, got null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Validate(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("got %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_EnumCaseSensitive(t *testing.T) {
	spec := &Param{Kind: KindEnum, Enum: []string{"active", "completed", "abandoned", "all"}}

	if _, err := spec.Validate("active"); err != nil {
		t.Errorf("exact match should pass: %v", err)
	}

	_, err := spec.Validate("Active")
	if err == nil {
		t.Fatal("case mismatch should be rejected")
	}
	want := `must be one of "active", "completed", "abandoned", "all", got "Active"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestValidate_EnumWrongType(t *testing.T) {
	spec := &Param{Kind: KindEnum, Enum: []string{"passed", "failed"}}

	_, err := spec.Validate(3.0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `"passed", "failed"`) {
		t.Errorf("message should list allowed values: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "got number") {
		t.Errorf("message should name the received type: %s", err.Error())
	}
}

func TestValidate_ArrayElementPath(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"ids": {Kind: KindArray, Elem: &Param{Kind: KindNumber}},
	}}

	_, err := spec.Validate(map[string]any{"ids": []any{1.0, "two", 3.0}})
	if err == nil {
		t.Fatal("expected error")
	}
	want := `parameter "ids[1]": expected number, got string`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestValidate_NestedPath(t *testing.T) {
	spec := &Param{Kind: KindObject, Fields: map[string]*Param{
		"options": {Kind: KindObject, Fields: map[string]*Param{
			"depth": {Kind: KindNumber},
		}},
	}}

	_, err := spec.Validate(map[string]any{
		"options": map[string]any{"depth": "deep"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	want := `parameter "options.depth": expected number, got string`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestValidate_Record(t *testing.T) {
	spec := &Param{Kind: KindRecord, Elem: &Param{Kind: KindString}}

	got, err := spec.Validate(map[string]any{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	want := map[string]any{"a": "1", "b": "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	_, err = spec.Validate(map[string]any{"a": "1", "b": 2.0})
	if err == nil {
		t.Fatal("expected error for non-string record value")
	}
	if !strings.Contains(err.Error(), `"b"`) {
		t.Errorf("error should name the offending key: %s", err.Error())
	}
}

func TestValidate_NumberWidening(t *testing.T) {
	spec := &Param{Kind: KindNumber}

	for _, raw := range []any{float64(7), float32(7), int(7), int32(7), int64(7)} {
		got, err := spec.Validate(raw)
		if err != nil {
			t.Errorf("Validate(%T) failed: %v", raw, err)
			continue
		}
		if got != float64(7) {
			t.Errorf("Validate(%T) = %v, want 7", raw, got)
		}
	}
}

func TestValidate_UnknownKindAcceptsAnything(t *testing.T) {
	spec := &Param{Kind: Kind("mystery")}

	for _, raw := range []any{"s", 1.0, true, []any{1.0}, map[string]any{"k": "v"}, nil} {
		got, err := spec.Validate(raw)
		if err != nil {
			t.Errorf("unknown kind should accept %T: %v", raw, err)
		}
		if !reflect.DeepEqual(got, raw) {
			t.Errorf("unknown kind should pass value through, got %v", got)
		}
	}
}
