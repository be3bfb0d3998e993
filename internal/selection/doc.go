// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package selection implements the top-N diverse selection engine.
//
// # Architecture
//
// A selection request flows through a fixed sequence of stages:
//
//   - Filter: hard exclusions (never-recommend tags, feedback exclusion,
//     avoid tags and keywords, mandatory keyword match) followed by soft
//     limits (distance, rating, travel time, weather gating)
//   - Score: preferred tag, suggested category and energy match weights,
//     scaled by a feedback multiplier
//   - Select: greedy two-axis quota selection over category and energy
//   - Relax: when fewer than N candidates are selected, the next step of
//     a fixed relaxation ladder loosens one soft limit and the pipeline
//     runs again over the merged pool
//
// The relaxation controller is an explicit state machine
// (FILTER_SCORE_SELECT, CHECK, RELAX, DONE). Every transition emits an
// Event that is kept on the SelectionResult and forwarded to an optional
// EventSink.
//
// # Design Principles
//
//   - Deterministic: ties break by candidate id ascending; randomness is
//     only introduced through an explicit shuffle seed
//   - Immutable inputs: candidates and specs are never mutated; derived
//     values live in a per-run Annotations map
//   - Degrading: collaborator failures become neutral values and only
//     NotFound reaches the caller as an error
//   - Cancellable: the context is checked before every pass and every
//     external call
//
// # Usage
//
//	engine, err := selection.NewEngine(selection.DefaultConfig(), selection.Dependencies{
//	    Source:   catalogSource,
//	    Feedback: feedbackProvider,
//	    Sink:     eventBus,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//
//	result, err := engine.Select(ctx, pool, spec, 5)
//	if errors.Is(err, selection.ErrNotFound) {
//	    // nothing matched even after the full ladder
//	}
//
// # Thread Safety
//
// Engine is safe for concurrent use. Each Select call owns its pool,
// spec values and annotations; only the statistics counters are shared.
package selection
