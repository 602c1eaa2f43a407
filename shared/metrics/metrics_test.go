package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TickApplied()
	m.TickApplied()
	m.EventApplied("block_seen")
	m.EventApplied("block_seen")
	m.EventApplied("block_changed")
	m.Rebuilt(3, 2*time.Millisecond)
	m.Rebuilt(0, time.Second)
	m.SetChunks(7)
	m.SetVertices(360, 36)
	m.SetAtlasLayers(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("block_seen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("block_changed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rebuilds))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.chunks))
	assert.Equal(t, 360.0, testutil.ToFloat64(m.vertices.WithLabelValues("opaque")))
	assert.Equal(t, 36.0, testutil.ToFloat64(m.vertices.WithLabelValues("transparent")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.atlasLayers))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rebuildDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TickApplied()
		m.EventApplied("block_seen")
		m.Rebuilt(1, time.Millisecond)
		m.SetChunks(1)
		m.SetVertices(1, 1)
		m.SetAtlasLayers(1)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.TickApplied()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "blockscope_ticks_applied_total 1"))
}
