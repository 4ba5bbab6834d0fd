package tools

import "sort"

// Schema renders the JSON Schema discovery document for a parameter spec.
// Generation is total: every spec tree yields a document, and a Kind this
// package does not know degrades to an unconstrained entry rather than an
// error, so one odd parameter never hides a whole tool from discovery.
func Schema(p *Param) map[string]any {
	if p == nil {
		p = &Param{Kind: KindObject}
	}
	doc := map[string]any{}

	switch p.Kind {
	case KindString:
		doc["type"] = "string"
	case KindNumber:
		doc["type"] = "number"
	case KindBoolean:
		doc["type"] = "boolean"
	case KindEnum:
		doc["type"] = "string"
		doc["enum"] = append([]string{}, p.Enum...)
	case KindArray:
		doc["type"] = "array"
		doc["items"] = Schema(p.Elem)
	case KindRecord:
		doc["type"] = "object"
		doc["additionalProperties"] = Schema(p.Elem)
	case KindObject:
		doc["type"] = "object"
		props := make(map[string]any, len(p.Fields))
		required := []string{}
		for name, field := range p.Fields {
			props[name] = Schema(field)
			if field.Required() {
				required = append(required, name)
			}
		}
		sort.Strings(required)
		doc["properties"] = props
		if len(required) > 0 {
			doc["required"] = required
		}
	default:
		if p.Description == "" {
			doc["description"] = "Accepts any value."
		}
	}

	if p.Description != "" {
		doc["description"] = p.Description
	}
	if p.Default != nil {
		doc["default"] = p.Default
	}
	return doc
}
