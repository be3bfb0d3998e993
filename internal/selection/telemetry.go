// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package selection

import "time"

// State is a state of the relaxation controller.
type State string

// Controller states.
const (
	StateFilterScoreSelect State = "FILTER_SCORE_SELECT"
	StateCheck             State = "CHECK"
	StateRelax             State = "RELAX"
	StateFallback          State = "FALLBACK"
	StateDone              State = "DONE"
)

// Stage names used in telemetry events.
const (
	StageFetch    = "fetch"
	StageFeedback = "feedback"
	StageFilter   = "filter"
	StageScore    = "score"
	StageSelect   = "select"
	StageCheck    = "check"
	StageRelax    = "relax"
	StageCurate   = "curate"
	StageDone     = "done"
)

// Event is one structured telemetry record.
type Event struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	State     State     `json:"state"`
	Pass      int       `json:"pass"`
	CountIn   int       `json:"count_in"`
	CountOut  int       `json:"count_out"`
	Step      string    `json:"step,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// recorder collects events for one request and forwards them to a sink.
type recorder struct {
	requestID string
	sink      EventSink
	events    []Event
	now       func() time.Time
}

func newRecorder(requestID string, sink EventSink) *recorder {
	return &recorder{requestID: requestID, sink: sink, now: time.Now}
}

func (r *recorder) emit(ev Event) {
	ev.RequestID = r.requestID
	if ev.At.IsZero() {
		ev.At = r.now()
	}
	r.events = append(r.events, ev)
	if r.sink != nil {
		r.sink.Emit(ev)
	}
}
