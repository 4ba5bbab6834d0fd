// Package tools defines the operation catalog of the Azure DevOps query
// surface: declarative parameter specs, a validating registry built from
// per-domain tables, and the dispatcher that turns named calls into
// response envelopes.
package tools

import (
	"fmt"
	"sort"
)

// Kind identifies the shape of a parameter value.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindEnum    Kind = "enum"
	KindRecord  Kind = "record"
	KindObject  Kind = "object"
)

// Param describes one input field as a tagged union over Kind. Only the
// fields relevant to the declared Kind are consulted: Enum for KindEnum,
// Elem for KindArray and KindRecord, Fields for KindObject.
type Param struct {
	Kind        Kind
	Description string
	Optional    bool
	Default     any
	Enum        []string
	Elem        *Param
	Fields      map[string]*Param
}

// Required reports whether a caller must supply a value for this field.
// A field with a default is never required, even when the default is a
// zero value such as 0, false, or the empty string.
func (p *Param) Required() bool {
	return !p.Optional && p.Default == nil
}

// ValidationError reports why raw arguments were rejected. Path is the
// dotted field path of the offending value, empty at the top level.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("parameter %q: %s", e.Path, e.Message)
}

func errAt(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Validate checks raw against the spec and returns the validated value
// with defaults filled in. Object specs tolerate unknown input fields and
// treat a nil input as an empty mapping, so an object whose fields all
// carry defaults validates against no input at all.
func (p *Param) Validate(raw any) (any, error) {
	return p.validate(raw, "")
}

func (p *Param) validate(raw any, path string) (any, error) {
	switch p.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, errAt(path, "expected string, got %s", typeName(raw))
		}
		return s, nil

	case KindNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return nil, errAt(path, "expected number, got %s", typeName(raw))

	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, errAt(path, "expected boolean, got %s", typeName(raw))
		}
		return b, nil

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, errAt(path, "expected one of %s, got %s", quoteList(p.Enum), typeName(raw))
		}
		for _, allowed := range p.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, errAt(path, "must be one of %s, got %q", quoteList(p.Enum), s)

	case KindArray:
		items, ok := raw.([]any)
		if !ok {
			return nil, errAt(path, "expected array, got %s", typeName(raw))
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := p.Elem.validate(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindRecord:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, errAt(path, "expected object, got %s", typeName(raw))
		}
		out := make(map[string]any, len(m))
		for _, k := range sortedKeys(m) {
			v, err := p.Elem.validate(m[k], joinPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	case KindObject:
		if raw == nil {
			raw = map[string]any{}
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, errAt(path, "expected object, got %s", typeName(raw))
		}
		out := make(map[string]any, len(p.Fields))
		for _, name := range sortedFieldNames(p.Fields) {
			field := p.Fields[name]
			fieldPath := joinPath(path, name)
			v, present := m[name]
			if !present {
				if field.Default != nil {
					out[name] = field.Default
					continue
				}
				if field.Optional {
					continue
				}
				return nil, errAt(fieldPath, "required")
			}
			vv, err := field.validate(v, fieldPath)
			if err != nil {
				return nil, err
			}
			out[name] = vv
		}
		return out, nil
	}

	// A Kind this package does not know constrains nothing.
	return raw, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func quoteList(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", v)
	}
	return out
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func sortedFieldNames(fields map[string]*Param) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
