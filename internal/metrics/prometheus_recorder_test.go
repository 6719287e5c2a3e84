package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counts(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncResolve(ResolveRendered)
	pr.IncResolve(ResolveHit)
	pr.IncResolve(ResolveHit)
	pr.IncListExcluded("getting-started")
	pr.ObserveListDuration("getting-started", 3*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.resolves.WithLabelValues(string(ResolveHit))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.resolves.WithLabelValues(string(ResolveRendered))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.listExcluded.WithLabelValues("getting-started")), 0)

	n, err := testutil.GatherAndCount(reg, "dskt_docs_section_list_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncResolve(ResolveNotFound)
	pr.ObserveListDuration("x", time.Second)
	pr.IncListExcluded("x")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncResolve(ResolveNotFound)
	r.ObserveListDuration("x", time.Second)
	r.IncListExcluded("x")
}
