// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package metrics records gas pool client calls in Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/dotandev/suigaspool/gaspool"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
)

const namespace = "suigas"

// Recorder implements gaspool.MethodTelemetry.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the client collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Gas pool client calls by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Latency of gas pool client calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	r.registry.MustRegister(r.calls, r.duration)
	return r
}

// Registry exposes the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) StartMethodTimer(_ context.Context, method gaspool.Method, _ map[attribute.Key]string) gaspool.MethodTimer {
	return &timer{recorder: r, method: string(method), start: time.Now()}
}

type timer struct {
	recorder *Recorder
	method   string
	start    time.Time
}

func (t *timer) Stop(err error) {
	t.recorder.duration.WithLabelValues(t.method).Observe(time.Since(t.start).Seconds())
	t.recorder.calls.WithLabelValues(t.method, Outcome(err)).Inc()
}

// Outcome classifies an operation error into a low-cardinality label.
func Outcome(err error) string {
	var httpErr *gaspool.HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gaspool.ErrReservationDurationTooLong):
		return "rejected"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, gaspool.ErrMalformedResponse), errors.Is(err, gaspool.ErrUnmarshalFailed):
		return "malformed"
	default:
		return "transport_error"
	}
}

// Summary is a flattened view of one call counter series.
type Summary struct {
	Method  string
	Outcome string
	Count   float64
}

// Snapshot gathers the call counters.
func (r *Recorder) Snapshot() ([]Summary, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, mf := range families {
		if mf.GetName() != namespace+"_client_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			s := Summary{Count: m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "method":
					s.Method = lp.GetValue()
				case "outcome":
					s.Outcome = lp.GetValue()
				}
			}
			out = append(out, s)
		}
	}
	return out, nil
}
