// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package feedback

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfinder/internal/selection"
)

func TestTally_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		up, down   int
		wantAvoid  bool
		wantBoost  bool
		wantFactor float64
	}{
		{"no ratings", 0, 0, false, false, 1.0},
		{"below minimum", 2, 0, false, false, 1.0},
		{"all rejected", 0, 3, true, false, 0.3},
		{"eighty percent rejected", 1, 4, true, false, 0.3},
		{"all approved", 3, 0, false, true, 1.8},
		{"seventy percent approved", 7, 3, false, true, 1.8},
		{"forty percent", 2, 3, false, false, 0.9},
		{"sixty percent", 3, 2, false, false, 1.1},
		{"one in three", 1, 2, false, false, 0.5 + 0.333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tally := Tally{Up: tt.up, Down: tt.down}
			if got := tally.ShouldAvoid(); got != tt.wantAvoid {
				t.Errorf("ShouldAvoid = %v, want %v", got, tt.wantAvoid)
			}
			if got := tally.ShouldBoost(); got != tt.wantBoost {
				t.Errorf("ShouldBoost = %v, want %v", got, tt.wantBoost)
			}
			if got := tally.Multiplier(); math.Abs(got-tt.wantFactor) > 1e-9 {
				t.Errorf("Multiplier = %f, want %f", got, tt.wantFactor)
			}
		})
	}
}

func TestParseVote(t *testing.T) {
	t.Parallel()

	if v, err := ParseVote(" UP "); err != nil || v != VoteUp {
		t.Errorf("ParseVote(UP) = %q, %v", v, err)
	}
	if _, err := ParseVote("sideways"); !errors.Is(err, selection.ErrInvalidRequest) {
		t.Errorf("ParseVote(sideways) error = %v, want ErrInvalidRequest", err)
	}
}

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStore(db)
}

func TestBadgerStore_RecordAndRead(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, v := range []Vote{VoteUp, VoteUp, VoteDown} {
		if _, err := store.Record(ctx, "museum-1", v); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := store.Record(ctx, "park-2", VoteDown); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Tally(ctx, "museum-1")
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if got.Up != 2 || got.Down != 1 || got.CandidateID != "museum-1" {
		t.Errorf("Tally = %+v, want 2 up 1 down", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	empty, err := store.Tally(ctx, "never-rated")
	if err != nil || empty.Total() != 0 {
		t.Errorf("Tally(never-rated) = %+v, %v", empty, err)
	}

	batch, err := store.Tallies(ctx, []string{"museum-1", "park-2", "never-rated"})
	if err != nil {
		t.Fatalf("Tallies: %v", err)
	}
	if len(batch) != 3 || batch["park-2"].Down != 1 || batch["never-rated"].Total() != 0 {
		t.Errorf("Tallies = %+v", batch)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all[0].CandidateID != "museum-1" || all[1].CandidateID != "park-2" {
		t.Errorf("All = %+v", all)
	}
}

func TestBadgerStore_Errors(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.Record(context.Background(), "", VoteUp); err == nil {
		t.Error("expected error for empty candidate id")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Tally(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Tally error = %v, want context.Canceled", err)
	}
}

type mockStore struct {
	mu      sync.Mutex
	tallies map[string]Tally
	err     error
	calls   atomic.Int32
}

func (m *mockStore) Record(_ context.Context, id string, v Vote) (Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tallies[id].apply(v, m.tallies[id].UpdatedAt)
	t.CandidateID = id
	m.tallies[id] = t
	return t, nil
}

func (m *mockStore) Tally(_ context.Context, id string) (Tally, error) {
	m.calls.Add(1)
	if m.err != nil {
		return Tally{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tallies[id], nil
}

func TestProvider_SignalsAndCache(t *testing.T) {
	t.Parallel()

	store := &mockStore{tallies: map[string]Tally{
		"bad":  {Up: 0, Down: 5},
		"good": {Up: 9, Down: 1},
		"meh":  {Up: 2, Down: 3},
	}}
	p := NewProvider(store, ProviderConfig{BatchSize: 2, MaxConcurrency: 2}, zerolog.Nop())
	ids := []string{"bad", "good", "meh", "new"}
	ctx := context.Background()

	excluded, err := p.Excluded(ctx, ids)
	if err != nil {
		t.Fatalf("Excluded: %v", err)
	}
	if len(excluded) != 1 || !excluded["bad"] {
		t.Errorf("Excluded = %v, want only bad", excluded)
	}
	callsAfterFirst := store.calls.Load()
	if callsAfterFirst != 4 {
		t.Errorf("store calls = %d, want 4", callsAfterFirst)
	}

	mults, err := p.Multipliers(ctx, ids)
	if err != nil {
		t.Fatalf("Multipliers: %v", err)
	}
	want := map[string]float64{"bad": 0.3, "good": 1.8, "meh": 0.9, "new": 1.0}
	for id, w := range want {
		if math.Abs(mults[id]-w) > 1e-9 {
			t.Errorf("Multipliers[%s] = %f, want %f", id, mults[id], w)
		}
	}
	if store.calls.Load() != callsAfterFirst {
		t.Errorf("second lookup hit the store: calls = %d", store.calls.Load())
	}
}

func TestProvider_StoreFailureIsNeutral(t *testing.T) {
	t.Parallel()

	store := &mockStore{tallies: map[string]Tally{}, err: errors.New("disk gone")}
	p := NewProvider(store, ProviderConfig{}, zerolog.Nop())

	mults, err := p.Multipliers(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Multipliers: %v", err)
	}
	if mults["a"] != 1.0 || mults["b"] != 1.0 {
		t.Errorf("Multipliers = %v, want neutral", mults)
	}

	excluded, err := p.Excluded(context.Background(), []string{"a"})
	if err != nil || len(excluded) != 0 {
		t.Errorf("Excluded = %v, %v; want empty", excluded, err)
	}
}

func TestProvider_Cancelled(t *testing.T) {
	t.Parallel()

	p := NewProvider(&mockStore{tallies: map[string]Tally{}}, ProviderConfig{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Excluded(ctx, []string{"a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Excluded error = %v, want context.Canceled", err)
	}
}

func TestProvider_RecordRefreshesCache(t *testing.T) {
	t.Parallel()

	store := &mockStore{tallies: map[string]Tally{"x": {Up: 0, Down: 2}}}
	p := NewProvider(store, ProviderConfig{}, zerolog.Nop())
	ctx := context.Background()

	if ex, _ := p.Excluded(ctx, []string{"x"}); ex["x"] {
		t.Fatal("x excluded with only two ratings")
	}
	if _, err := p.Record(ctx, "x", VoteDown); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if ex, _ := p.Excluded(ctx, []string{"x"}); !ex["x"] {
		t.Error("x not excluded after third rejection")
	}
}

func TestProvider_WithBadgerStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	p := NewProvider(store, ProviderConfig{}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := p.Record(ctx, "cafe", VoteUp); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	mults, err := p.Multipliers(ctx, []string{"cafe"})
	if err != nil {
		t.Fatalf("Multipliers: %v", err)
	}
	if mults["cafe"] != BoostMultiplier {
		t.Errorf("Multipliers[cafe] = %f, want %f", mults["cafe"], BoostMultiplier)
	}
}
