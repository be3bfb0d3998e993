// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const tallyKeyPrefix = "feedback:"

// Store reads and writes feedback tallies.
type Store interface {
	Record(ctx context.Context, candidateID string, vote Vote) (Tally, error)
	Tally(ctx context.Context, candidateID string) (Tally, error)
}

// OpenBadger opens a Badger database at path, or an in-memory one when
// path is empty. Badger's own logging is disabled.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// BadgerStore persists one JSON-encoded Tally per candidate.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerStore wraps an open Badger database. The caller owns db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

func tallyKey(id string) []byte { return []byte(tallyKeyPrefix + id) }

// Record counts a vote and returns the updated tally. The read and write
// happen in one transaction; Badger retries are left to the caller via
// badger.ErrConflict.
func (s *BadgerStore) Record(ctx context.Context, candidateID string, vote Vote) (Tally, error) {
	if err := ctx.Err(); err != nil {
		return Tally{}, err
	}
	if candidateID == "" {
		return Tally{}, errors.New("candidate id is required")
	}

	var updated Tally
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readTally(txn, candidateID)
		if err != nil {
			return err
		}
		updated = current.apply(vote, s.now().UTC())

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal tally: %w", err)
		}
		if err := txn.Set(tallyKey(candidateID), data); err != nil {
			return fmt.Errorf("set tally: %w", err)
		}
		return nil
	})
	if err != nil {
		return Tally{}, fmt.Errorf("record feedback for %s: %w", candidateID, err)
	}
	return updated, nil
}

// Tally returns the stored tally, or an empty one for an unrated candidate.
func (s *BadgerStore) Tally(ctx context.Context, candidateID string) (Tally, error) {
	if err := ctx.Err(); err != nil {
		return Tally{}, err
	}
	var t Tally
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		t, err = readTally(txn, candidateID)
		return err
	})
	if err != nil {
		return Tally{}, fmt.Errorf("get tally for %s: %w", candidateID, err)
	}
	return t, nil
}

// Tallies returns the tallies for ids in a single read transaction.
// Unrated ids map to empty tallies.
func (s *BadgerStore) Tallies(ctx context.Context, ids []string) (map[string]Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]Tally, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			t, err := readTally(txn, id)
			if err != nil {
				return err
			}
			out[id] = t
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get tallies: %w", err)
	}
	return out, nil
}

// All returns every stored tally in key order.
func (s *BadgerStore) All(ctx context.Context) ([]Tally, error) {
	var out []Tally
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tallyKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var t Tally
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			if t.CandidateID == "" {
				t.CandidateID = strings.TrimPrefix(string(item.Key()), tallyKeyPrefix)
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tallies: %w", err)
	}
	return out, nil
}

func readTally(txn *badger.Txn, id string) (Tally, error) {
	item, err := txn.Get(tallyKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Tally{CandidateID: id}, nil
	}
	if err != nil {
		return Tally{}, err
	}
	var t Tally
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &t)
	}); err != nil {
		return Tally{}, fmt.Errorf("decode tally: %w", err)
	}
	t.CandidateID = id
	return t, nil
}
