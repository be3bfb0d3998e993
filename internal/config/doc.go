// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package config loads Wayfinder's configuration with koanf.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. Built-in defaults (structs provider).
//  2. A YAML file: $CONFIG_PATH, else the first of DefaultConfigPaths
//     that exists.
//  3. Environment variables listed in the mapping table in koanf.go,
//     e.g. SERVER_PORT, LOG_LEVEL, SELECTION_MATCH_RATIO.
//
// The merged result is validated before Load returns it.
//
// Example config.yaml:
//
//	server:
//	  port: 8080
//	selection:
//	  diversity:
//	    match_ratio: 0.6
//	catalog:
//	  duckdb_path: /data/catalog.duckdb
//	  seed_file: /data/seed.json
//	feedback:
//	  badger_path: /data/feedback
//	semantic:
//	  endpoint: http://curator:8000/curate
package config
