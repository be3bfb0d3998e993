// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package session tracks the in-flight selection request for each session
// so that a newer request from the same session cancels the older one.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/wayfinder/internal/metrics"
)

// ErrSuperseded is the cancellation cause of a request replaced by a
// newer one from the same session.
var ErrSuperseded = errors.New("superseded by a newer request")

type entry struct {
	cancel context.CancelCauseFunc
	seq    uint64
}

// Registry maps session IDs to their current request.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]entry
	seq      uint64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]entry)}
}

// Begin derives a context for a new request in sessionID, cancelling the
// session's previous request if one is still running. The caller must
// call done when the request finishes. An empty sessionID is not tracked.
func (r *Registry) Begin(parent context.Context, sessionID string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	if sessionID == "" {
		return ctx, func() { cancel(nil) }
	}

	r.mu.Lock()
	r.seq++
	seq := r.seq
	prev, existed := r.sessions[sessionID]
	r.sessions[sessionID] = entry{cancel: cancel, seq: seq}
	r.mu.Unlock()

	if existed {
		prev.cancel(ErrSuperseded)
		metrics.SupersededRequests.Inc()
	} else {
		metrics.ActiveSessions.Inc()
	}

	var once sync.Once
	done := func() {
		once.Do(func() {
			cancel(nil)
			r.mu.Lock()
			defer r.mu.Unlock()
			if cur, ok := r.sessions[sessionID]; ok && cur.seq == seq {
				delete(r.sessions, sessionID)
				metrics.ActiveSessions.Dec()
			}
		})
	}
	return ctx, done
}

// Active returns the number of sessions with a request in flight.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
