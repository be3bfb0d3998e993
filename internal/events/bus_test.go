// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/selection"
)

func startBus(t *testing.T, bus *Bus) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- bus.Run(ctx) }()

	select {
	case <-bus.Running():
	case err := <-errCh:
		cancel()
		t.Fatalf("Run: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})
}

func TestBus_DeliversEvents(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	got := make(chan selection.Event, 4)
	bus.Handle("collector", func(ev selection.Event) error {
		got <- ev
		return nil
	})
	startBus(t, bus)

	before := testutil.ToFloat64(metrics.TelemetryEvents.WithLabelValues("bus-test"))
	bus.Emit(selection.Event{RequestID: "r1", Stage: "bus-test", State: selection.StateRelax, Pass: 2, Step: "distance"})

	select {
	case ev := <-got:
		if ev.RequestID != "r1" || ev.State != selection.StateRelax || ev.Pass != 2 || ev.Step != "distance" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}

	deadline := time.Now().Add(5 * time.Second)
	for testutil.ToFloat64(metrics.TelemetryEvents.WithLabelValues("bus-test")) < before+1 {
		if time.Now().After(deadline) {
			t.Fatal("telemetry counter not incremented")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBus_HandlerPanicRecovered(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	seen := make(chan string, 4)
	bus.Handle("flaky", func(ev selection.Event) error {
		if ev.RequestID == "boom" {
			panic("handler bug")
		}
		seen <- ev.RequestID
		return nil
	})
	poisoned, err := bus.pubsub.Subscribe(context.Background(), TopicPoison)
	if err != nil {
		t.Fatalf("Subscribe poison: %v", err)
	}
	startBus(t, bus)

	bus.Emit(selection.Event{RequestID: "boom", Stage: "bus-panic"})

	select {
	case msg := <-poisoned:
		msg.Ack()
		if msg.Metadata.Get("request_id") != "boom" {
			t.Errorf("poisoned request_id = %q", msg.Metadata.Get("request_id"))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("panicking event not moved to the poison topic")
	}

	bus.Emit(selection.Event{RequestID: "ok", Stage: "bus-panic"})
	select {
	case id := <-seen:
		if id != "ok" {
			t.Errorf("delivered %q, want ok", id)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("bus stopped delivering after a handler panic")
	}
}

func TestBus_EmitAfterCloseDoesNotPanic(t *testing.T) {
	t.Parallel()

	bus, err := NewBus(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	_ = bus.Close()
	bus.Emit(selection.Event{RequestID: "late", Stage: "bus-closed"})
}

func TestLoggerAdapter(t *testing.T) {
	t.Parallel()

	a := NewLoggerAdapter(zerolog.Nop()).With(watermill.LogFields{"topic": TopicTelemetry})
	a.Info("info", nil)
	a.Debug("debug", watermill.LogFields{"k": 1})
	a.Trace("trace", nil)
	a.Error("error", errors.New("x"), nil)
}
