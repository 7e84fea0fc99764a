package observability_test

import (
	"testing"

	"github.com/forgecore/ecs/observability"
)

func TestNopLoggerDoesNotPanic(t *testing.T) {
	log := observability.NewNopLogger()
	log = log.With("tick", uint64(1))
	log.Info("step completed")
	log.Error("step failed", nil)
}

func TestWithReturnsANewLoggerInstance(t *testing.T) {
	base := observability.NewNopLogger()
	scoped := base.With("step", "movement")
	if scoped == base {
		t.Fatalf("expected With to return a distinct scoped logger")
	}
}
