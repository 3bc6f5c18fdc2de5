package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func staticChecker(name string, result Result) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result { return result })
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("pms", staticChecker("pms", Healthy("ok")))
	agg.Register("stripe", staticChecker("stripe", Degraded("probing")))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results["pms"].Status != StatusHealthy {
		t.Errorf("pms status = %v, want healthy", results["pms"].Status)
	}
	if results["stripe"].Status != StatusDegraded {
		t.Errorf("stripe status = %v, want degraded", results["stripe"].Status)
	}
	if results["pms"].Duration < 0 {
		t.Error("duration not recorded")
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"one unhealthy", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register("pms", staticChecker("pms", Healthy("ok")))

	result, err := agg.Check(context.Background(), "pms")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("pms", staticChecker("pms", Healthy("")))
	agg.Register("stripe", staticChecker("stripe", Healthy("")))

	agg.Unregister("pms")

	names := agg.CheckerNames()
	if len(names) != 1 || names[0] != "stripe" {
		t.Errorf("CheckerNames() = %v, want [stripe]", names)
	}
}

func TestAggregator_RegistrationOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register("c", staticChecker("c", Healthy("")))
	agg.Register("a", staticChecker("a", Healthy("")))
	agg.Register("b", staticChecker("b", Healthy("")))
	agg.Register("a", staticChecker("a", Healthy(""))) // re-register keeps position

	names := agg.CheckerNames()
	want := []string{"c", "a", "b"}
	if len(names) != len(want) {
		t.Fatalf("CheckerNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("CheckerNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestAggregator_SlowCheckTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		select {
		case <-time.After(5 * time.Second):
			return Healthy("too late")
		case <-ctx.Done():
			return Unhealthy("canceled", ctx.Err())
		}
	}))

	start := time.Now()
	results := agg.CheckAll(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("CheckAll took %v, want bounded by the 20ms timeout", elapsed)
	}

	result := results["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", result.Status)
	}
}
