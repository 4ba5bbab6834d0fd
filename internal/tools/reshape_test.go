package tools

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
)

func TestScalarValues(t *testing.T) {
	if strVal(nil) != "" || strVal(ptr("x")) != "x" {
		t.Error("strVal")
	}
	if intVal(nil) != 0 || intVal(ptr(7)) != 7 {
		t.Error("intVal")
	}
	if int64Val(nil) != 0 || int64Val(ptr(int64(9))) != 9 {
		t.Error("int64Val")
	}
	if floatVal(nil) != 0 || floatVal(ptr(1.5)) != 1.5 {
		t.Error("floatVal")
	}
	if boolVal(nil) || !boolVal(ptr(true)) {
		t.Error("boolVal")
	}
}

func TestUUIDVal(t *testing.T) {
	if uuidVal(nil) != "" {
		t.Error("nil uuid should render empty")
	}
	id := uuid.MustParse("12345678-1234-1234-1234-123456789abc")
	if uuidVal(&id) != "12345678-1234-1234-1234-123456789abc" {
		t.Errorf("got %s", uuidVal(&id))
	}
}

func TestEnumVal(t *testing.T) {
	if enumVal[build.BuildStatus](nil) != "" {
		t.Error("nil enum should render empty")
	}
	status := build.BuildStatusValues.Completed
	if enumVal(&status) != "completed" {
		t.Errorf("got %s", enumVal(&status))
	}
}

func TestTimeVal(t *testing.T) {
	if timeVal(nil) != "" {
		t.Error("nil time should render empty")
	}
	at := azuredevops.Time{Time: time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)}
	if got := timeVal(&at); got != "2024-03-09T14:30:00Z" {
		t.Errorf("got %s", got)
	}
}

func TestIdentityName(t *testing.T) {
	if identityName(nil) != "" {
		t.Error("nil identity should render empty")
	}
	if got := identityName(&webapi.IdentityRef{DisplayName: ptr("Casey Jensen")}); got != "Casey Jensen" {
		t.Errorf("got %s", got)
	}
	if got := identityName(&webapi.IdentityRef{UniqueName: ptr("casey@fabrikam.com")}); got != "casey@fabrikam.com" {
		t.Errorf("display name fallback: got %s", got)
	}
	if got := identityName(&webapi.IdentityRef{
		DisplayName: ptr("Casey Jensen"),
		UniqueName:  ptr("casey@fabrikam.com"),
	}); got != "Casey Jensen" {
		t.Errorf("display name should win: got %s", got)
	}
}
