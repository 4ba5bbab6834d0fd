package tools

import (
	"reflect"
	"testing"
)

func TestSchema_Scalars(t *testing.T) {
	tests := []struct {
		name string
		spec *Param
		typ  string
	}{
		{"string", &Param{Kind: KindString}, "string"},
		{"number", &Param{Kind: KindNumber}, "number"},
		{"boolean", &Param{Kind: KindBoolean}, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Schema(tt.spec)
			if doc["type"] != tt.typ {
				t.Errorf("type = %v, want %s", doc["type"], tt.typ)
			}
		})
	}
}

func TestSchema_Enum(t *testing.T) {
	doc := Schema(&Param{Kind: KindEnum, Enum: []string{"passed", "failed"}})
	if doc["type"] != "string" {
		t.Errorf("enum type = %v, want string", doc["type"])
	}
	if !reflect.DeepEqual(doc["enum"], []string{"passed", "failed"}) {
		t.Errorf("enum values = %v", doc["enum"])
	}
}

func TestSchema_Object(t *testing.T) {
	doc := Schema(&Param{Kind: KindObject, Fields: map[string]*Param{
		"repository": {Kind: KindString, Description: "Repository name or ID."},
		"branch":     {Kind: KindString, Default: "main"},
		"path":       {Kind: KindString},
	}})

	if doc["type"] != "object" {
		t.Fatalf("type = %v, want object", doc["type"])
	}

	props := doc["properties"].(map[string]any)
	if len(props) != 3 {
		t.Errorf("expected 3 properties, got %d", len(props))
	}
	repo := props["repository"].(map[string]any)
	if repo["description"] != "Repository name or ID." {
		t.Errorf("description not carried through: %v", repo["description"])
	}
	branch := props["branch"].(map[string]any)
	if branch["default"] != "main" {
		t.Errorf("default not carried through: %v", branch["default"])
	}

	// Defaulted fields are not required, and required names are sorted.
	required := doc["required"].([]string)
	if !reflect.DeepEqual(required, []string{"path", "repository"}) {
		t.Errorf("required = %v, want [path repository]", required)
	}
}

func TestSchema_ObjectAllDefaulted(t *testing.T) {
	doc := Schema(&Param{Kind: KindObject, Fields: map[string]*Param{
		"top": {Kind: KindNumber, Default: 100},
	}})
	if _, ok := doc["required"]; ok {
		t.Error("required should be omitted when no field needs it")
	}
}

func TestSchema_ArrayAndRecord(t *testing.T) {
	arr := Schema(&Param{Kind: KindArray, Elem: &Param{Kind: KindNumber}})
	if arr["type"] != "array" {
		t.Errorf("array type = %v", arr["type"])
	}
	if arr["items"].(map[string]any)["type"] != "number" {
		t.Errorf("items = %v", arr["items"])
	}

	rec := Schema(&Param{Kind: KindRecord, Elem: &Param{Kind: KindString}})
	if rec["type"] != "object" {
		t.Errorf("record type = %v", rec["type"])
	}
	if rec["additionalProperties"].(map[string]any)["type"] != "string" {
		t.Errorf("additionalProperties = %v", rec["additionalProperties"])
	}
}

func TestSchema_UnknownKind(t *testing.T) {
	doc := Schema(&Param{Kind: Kind("mystery")})
	if _, ok := doc["type"]; ok {
		t.Error("unknown kind should not constrain type")
	}
	if doc["description"] != "Accepts any value." {
		t.Errorf("description = %v", doc["description"])
	}

	// An explicit description wins over the placeholder.
	doc = Schema(&Param{Kind: Kind("mystery"), Description: "Opaque blob."})
	if doc["description"] != "Opaque blob." {
		t.Errorf("description = %v", doc["description"])
	}
}

func TestSchema_NilSpec(t *testing.T) {
	doc := Schema(nil)
	if doc["type"] != "object" {
		t.Errorf("nil spec should render an object schema, got %v", doc["type"])
	}
}
