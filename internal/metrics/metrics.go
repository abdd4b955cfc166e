// Package metrics exposes Prometheus collectors for requests and model calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nadzzz/koe/internal/engine"
)

const namespace = "koe"

// Collector holds every koe metric.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	audioBytes      prometheus.Histogram

	modelCallsTotal   *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
}

// NewCollector registers the collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on /metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of synthesis requests",
			},
			[]string{"mode", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Synthesis request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"mode"},
		),
		audioBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "audio_bytes",
				Help:      "Size of rendered WAV files in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		modelCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Total number of acoustic model calls",
			},
			[]string{"model", "status"},
		),
		modelCallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Acoustic model call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

// RecordRequest records one finished request.
func (c *Collector) RecordRequest(mode, status string, d time.Duration, audioBytes int) {
	c.requestsTotal.WithLabelValues(mode, status).Inc()
	c.requestDuration.WithLabelValues(mode).Observe(d.Seconds())
	if audioBytes > 0 {
		c.audioBytes.Observe(float64(audioBytes))
	}
}

// RecordModelCall records one acoustic model call.
func (c *Collector) RecordModelCall(model string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.modelCallsTotal.WithLabelValues(model, status).Inc()
	c.modelCallDuration.WithLabelValues(model).Observe(d.Seconds())
}

// InstrumentCore wraps core so every call is timed and counted.
func (c *Collector) InstrumentCore(core engine.Core) engine.Core {
	return &instrumentedCore{core: core, c: c}
}

type instrumentedCore struct {
	core engine.Core
	c    *Collector
}

func (i *instrumentedCore) PredictDuration(ids []int64, speaker int64) ([]float32, error) {
	start := time.Now()
	out, err := i.core.PredictDuration(ids, speaker)
	i.c.RecordModelCall("duration", time.Since(start), err)
	return out, err
}

func (i *instrumentedCore) PredictIntonation(in engine.IntonationInput, speaker int64) ([]float32, error) {
	start := time.Now()
	out, err := i.core.PredictIntonation(in, speaker)
	i.c.RecordModelCall("intonation", time.Since(start), err)
	return out, err
}

func (i *instrumentedCore) Decode(frames, size int, f0, phonemes []float32, speaker int64) ([]float32, error) {
	start := time.Now()
	out, err := i.core.Decode(frames, size, f0, phonemes, speaker)
	i.c.RecordModelCall("decode", time.Since(start), err)
	return out, err
}
