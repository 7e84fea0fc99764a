package observability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/forgecore/ecs/observability"
)

func TestObserveStepRecordsDurationAndSuccessOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := observability.NewMetricsSink(reg)

	sink.ObserveStep(observability.StepSummary{
		StepName: "movement",
		Duration: 5 * time.Millisecond,
	})

	count := testutil.ToFloat64(sink.StepsCounterFor("movement", "success"))
	if count != 1 {
		t.Fatalf("expected 1 success observation, got %v", count)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if !containsMetric(families, "ecs_scheduler_step_duration_seconds") {
		t.Fatalf("expected duration histogram to be registered")
	}
}

func TestObserveStepRecordsErrorOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := observability.NewMetricsSink(reg)

	sink.ObserveStep(observability.StepSummary{
		StepName: "physics",
		Duration: time.Millisecond,
		Err:      errors.New("boom"),
	})

	count := testutil.ToFloat64(sink.StepsCounterFor("physics", "error"))
	if count != 1 {
		t.Fatalf("expected 1 error observation, got %v", count)
	}
}

func containsMetric(families []*dto.MetricFamily, name string) bool {
	for _, mf := range families {
		if mf.GetName() == name {
			return true
		}
	}
	return false
}
