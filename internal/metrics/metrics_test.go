package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFetch(OutcomeOK, 20*time.Millisecond)
	m.ObserveFetch(OutcomeOK, 30*time.Millisecond)
	m.ObserveFetch("not_found", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("fetch_total{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("not_found")); got != 1 {
		t.Errorf("fetch_total{outcome=not_found} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.fetchDuration); got != 2 {
		t.Errorf("fetch_duration_seconds series = %d, want 2", got)
	}
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering twice on the same registry expected to panic")
		}
	}()
	New(reg)
}
