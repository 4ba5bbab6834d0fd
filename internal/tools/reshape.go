package tools

import (
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
)

// The REST clients hand back pointer-heavy structs. Payloads flatten them
// to plain values, with "" and 0 standing in for anything absent.

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func int64Val(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func boolVal(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func uuidVal(p *uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func enumVal[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func timeVal(t *azuredevops.Time) string {
	if t == nil {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}

// identityName collapses an identity reference to its display name,
// falling back to the unique (login) name.
func identityName(ref *webapi.IdentityRef) string {
	if ref == nil {
		return ""
	}
	if name := strVal(ref.DisplayName); name != "" {
		return name
	}
	return strVal(ref.UniqueName)
}

func ptr[T any](v T) *T {
	return &v
}
