// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package gaspool

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Method names a client operation as reported to MethodTelemetry and used as
// the span name suffix ("gaspool.<method>").
type Method string

const (
	MethodReserveGas    Method = "reserve_gas"
	MethodExecuteTx     Method = "execute_tx"
	MethodGetEvents     Method = "get_events"
	MethodHealth        Method = "health"
	MethodServerVersion Method = "server_version"
)

// Attribute keys set on operation spans. The same keys, with their values
// rendered as strings, are handed to MethodTelemetry.
const (
	AttrGasBudget           attribute.Key = "gas.budget"
	AttrReserveDurationSecs attribute.Key = "gas.reserve_duration_secs"
	AttrReservationID       attribute.Key = "gas.reservation_id"
	AttrTxSizeBytes         attribute.Key = "tx.size_bytes"
	AttrTxDigest            attribute.Key = "tx.digest"
)

// MethodTelemetry times gas pool operations. Every started timer is stopped
// exactly once with the operation's final error, including operations the
// client rejects locally before sending anything.
type MethodTelemetry interface {
	StartMethodTimer(ctx context.Context, method Method, attributes map[attribute.Key]string) MethodTimer
}

// MethodTimer is returned by MethodTelemetry.StartMethodTimer.
type MethodTimer interface {
	Stop(err error)
}

type noopMethodTelemetry struct{}

func (noopMethodTelemetry) StartMethodTimer(context.Context, Method, map[attribute.Key]string) MethodTimer {
	return noopMethodTimer{}
}

type noopMethodTimer struct{}

func (noopMethodTimer) Stop(error) {}

func defaultMethodTelemetry() MethodTelemetry {
	return noopMethodTelemetry{}
}

func telemetryLabels(attrs []attribute.KeyValue) map[attribute.Key]string {
	labels := make(map[attribute.Key]string, len(attrs))
	for _, kv := range attrs {
		labels[kv.Key] = kv.Value.Emit()
	}
	return labels
}

// rejectOperation reports an operation refused before any I/O. No span is
// opened.
func (c *Client) rejectOperation(ctx context.Context, method Method, err error, attrs ...attribute.KeyValue) error {
	c.telemetry.StartMethodTimer(ctx, method, telemetryLabels(attrs)).Stop(err)
	return err
}
