package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/transit-network-mapper/types"
)

func TestMappingError_Error(t *testing.T) {
	err := NewMappingError("TEST_001", "test error message").
		WithEntity("link", "l42").
		WithRoute("line1", "routeA").
		WithDetails("additional details")

	errorStr := err.Error()

	for _, want := range []string{"[TEST_001]", "line line1 route routeA", "link l42", "test error message", "additional details"} {
		if !strings.Contains(errorStr, want) {
			t.Errorf("expected error string to contain %q, got: %s", want, errorStr)
		}
	}
}

func TestMappingError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewMappingError("TEST_002", "wrapper").WithCause(cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
	if !strings.Contains(err.Error(), "underlying failure") {
		t.Errorf("expected cause in error string, got: %s", err.Error())
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("bad travel cost type")
	if err.Severity != types.CRITICAL {
		t.Errorf("expected CRITICAL severity, got %v", err.Severity)
	}
	if err.Code != "CONFIG_001" {
		t.Errorf("expected code CONFIG_001, got %s", err.Code)
	}
}

func TestNewMissingInputError(t *testing.T) {
	err := NewMissingInputError("stopFacility", "s1", "unknown stop facility")
	if err.Entity.Kind != "stopFacility" || err.Entity.ID != "s1" {
		t.Errorf("expected entity stopFacility s1, got %v", err.Entity)
	}
	if !strings.Contains(err.Error(), "stopFacility s1") {
		t.Errorf("expected entity in message, got: %s", err.Error())
	}
}

func TestNewUnmappableRouteError(t *testing.T) {
	err := NewUnmappableRouteError("line1", "routeA", "no path to sink")
	if err.Severity != types.WARNING {
		t.Errorf("expected WARNING severity, got %v", err.Severity)
	}
	if !strings.Contains(err.Error(), "no path to sink") {
		t.Errorf("expected reason in message, got: %s", err.Error())
	}
}
