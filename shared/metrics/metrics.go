// Package metrics expõe contadores Prometheus do motor de replay.
//
// Métricas (namespace blockscope):
//   - ticks_applied_total: ticks do replay aplicados ao mundo
//   - events_applied_total{kind}: eventos de mundo aplicados
//   - chunk_rebuilds_total / chunk_rebuild_duration_seconds
//   - chunks_loaded, vertices{pass}, atlas_layers: gauges
//
// Todos os métodos aceitam receptor nil, para que o mundo funcione sem métricas.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blockscope"

// Metrics agrupa os coletores do motor.
type Metrics struct {
	ticks           prometheus.Counter
	events          *prometheus.CounterVec
	rebuilds        prometheus.Counter
	rebuildDuration prometheus.Histogram
	chunks          prometheus.Gauge
	vertices        *prometheus.GaugeVec
	atlasLayers     prometheus.Gauge
}

// New cria os coletores e registra em reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_applied_total",
			Help:      "Ticks do replay aplicados ao mundo.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_applied_total",
			Help:      "Eventos de mundo aplicados, por tipo.",
		}, []string{"kind"}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_rebuilds_total",
			Help:      "Chunks remontados.",
		}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_rebuild_duration_seconds",
			Help:      "Duração de cada rodada de remontagem de malhas.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_loaded",
			Help:      "Chunks com pelo menos um bloco.",
		}),
		vertices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vertices",
			Help:      "Vértices enviados à GPU, por passada.",
		}, []string{"pass"}),
		atlasLayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "atlas_layers",
			Help:      "Camadas no atlas de texturas.",
		}),
	}

	reg.MustRegister(m.ticks, m.events, m.rebuilds, m.rebuildDuration, m.chunks, m.vertices, m.atlasLayers)
	return m
}

// TickApplied conta um tick aplicado.
func (m *Metrics) TickApplied() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

// EventApplied conta um evento aplicado.
func (m *Metrics) EventApplied(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// Rebuilt registra uma rodada de remontagem.
func (m *Metrics) Rebuilt(chunks int, d time.Duration) {
	if m == nil || chunks == 0 {
		return
	}
	m.rebuilds.Add(float64(chunks))
	m.rebuildDuration.Observe(d.Seconds())
}

// SetChunks atualiza o gauge de chunks carregados.
func (m *Metrics) SetChunks(n int) {
	if m == nil {
		return
	}
	m.chunks.Set(float64(n))
}

// SetVertices atualiza os gauges de vértices opacos e transparentes.
func (m *Metrics) SetVertices(opaque, transparent int) {
	if m == nil {
		return
	}
	m.vertices.WithLabelValues("opaque").Set(float64(opaque))
	m.vertices.WithLabelValues("transparent").Set(float64(transparent))
}

// SetAtlasLayers atualiza o gauge do atlas.
func (m *Metrics) SetAtlasLayers(n int) {
	if m == nil {
		return
	}
	m.atlasLayers.Set(float64(n))
}

// Handler serve /metrics a partir do gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
