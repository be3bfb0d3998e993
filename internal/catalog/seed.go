// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wayfinder/internal/selection"
	"github.com/tomtom215/wayfinder/internal/validation"
)

// LoadSeedFile reads a JSON array of candidates from path.
func LoadSeedFile(path string) ([]selection.Candidate, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	cands, err := DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return cands, nil
}

// DecodeSeed decodes and validates a JSON candidate array. Unknown fields,
// invalid candidates and duplicate ids are rejected.
func DecodeSeed(r io.Reader) ([]selection.Candidate, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cands []selection.Candidate
	if err := dec.Decode(&cands); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	seen := make(map[string]int, len(cands))
	for i := range cands {
		if err := validation.ValidateStruct(&cands[i]); err != nil {
			return nil, fmt.Errorf("candidate %d (%s): %w", i, cands[i].ID, err)
		}
		if prev, ok := seen[cands[i].ID]; ok {
			return nil, fmt.Errorf("candidate %d: duplicate id %q (first at %d)", i, cands[i].ID, prev)
		}
		seen[cands[i].ID] = i
	}
	return cands, nil
}
