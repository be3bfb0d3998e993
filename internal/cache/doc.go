// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package cache provides a generic, thread-safe LRU cache with per-entry TTL.

The feedback provider keeps recently read vote tallies here so that every
relaxation pass of a selection does not go back to Badger for the same
candidates.

Usage Example:

	c := cache.NewLRU[string, feedback.Tally](10000, 5*time.Minute)
	c.Add("museum", tally)
	if t, ok := c.Get("museum"); ok {
	    // use t
	}

Expired entries are dropped lazily on Get, or in bulk by CleanupExpired.
Hit and miss counts are available from Stats.
*/
package cache
