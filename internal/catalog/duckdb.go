// Wayfinder - Diverse Top-N Selection with Progressive Constraint Relaxation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/selection"
)

// DefaultFetchLimit caps the rows returned by one fetch.
const DefaultFetchLimit = 500

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	bucket VARCHAR NOT NULL,
	tags VARCHAR NOT NULL DEFAULT '',
	rating DOUBLE,
	distance_km DOUBLE,
	travel_minutes DOUBLE,
	energy VARCHAR NOT NULL DEFAULT '',
	weather_suitability DOUBLE,
	region VARCHAR NOT NULL DEFAULT '',
	description VARCHAR NOT NULL DEFAULT '',
	keywords VARCHAR NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_candidates_region ON candidates(region);
CREATE INDEX IF NOT EXISTS idx_candidates_bucket ON candidates(bucket)
`

const candidateColumns = "id, name, bucket, tags, rating, distance_km, travel_minutes, energy, weather_suitability, region, description, keywords"

// OpenDuckDB opens a DuckDB database at path, or an in-memory database when
// path is empty. Extension auto-install is disabled.
func OpenDuckDB(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	dsn := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return db, nil
}

// DuckDBStore is a CandidateSource backed by a DuckDB table. Tags and
// keywords are stored comma-joined.
type DuckDBStore struct {
	db    *sql.DB
	limit int
}

var _ selection.CandidateSource = (*DuckDBStore)(nil)

// NewDuckDBStore wraps db and creates the schema. limit <= 0 selects
// DefaultFetchLimit.
func NewDuckDBStore(ctx context.Context, db *sql.DB, limit int) (*DuckDBStore, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	s := &DuckDBStore{db: db, limit: limit}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return s, nil
}

// Upsert inserts or replaces candidates in one transaction.
func (s *DuckDBStore) Upsert(ctx context.Context, cands []selection.Candidate) (err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogQuery("upsert", time.Since(start), err) }()

	for i := range cands {
		if err := checkJoinable(&cands[i]); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO candidates ("+candidateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range cands {
		c := &cands[i]
		energy := ""
		if c.Energy != selection.EnergyUnknown {
			energy = c.Energy.String()
		}
		if _, err = stmt.ExecContext(ctx,
			c.ID, c.Name, string(c.Bucket), strings.Join(c.Tags, ","),
			nullable(c.Rating), nullable(c.DistanceKM), nullable(c.TravelMinutes),
			energy, nullable(c.WeatherSuitability),
			c.Region, c.Description, strings.Join(c.Keywords, ","),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// FetchCandidates returns candidates matching spec's source-side
// predicates, best rated first, capped at the store limit.
func (s *DuckDBStore) FetchCandidates(ctx context.Context, spec *selection.ConstraintSpec) (cands []selection.Candidate, err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogQuery("fetch", time.Since(start), err) }()

	query, args := buildFetchQuery(spec, s.limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return cands, nil
}

// Count returns the number of stored candidates and updates the catalog
// size gauge.
func (s *DuckDBStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates").Scan(&n); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	metrics.CatalogCandidates.Set(float64(n))
	return n, nil
}

// Ping checks the database connection.
func (s *DuckDBStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// buildFetchQuery renders the parameterised fetch. Each predicate lets
// NULL columns through so unknown values never exclude a candidate.
func buildFetchQuery(spec *selection.ConstraintSpec, limit int) (string, []any) {
	var (
		where []string
		args  []any
	)
	if spec != nil {
		if !spec.Everywhere() && spec.Region != "" {
			where = append(where, "(region = '' OR lower(region) = lower(?))")
			args = append(args, spec.Region)
		}
		if spec.DistanceLimitKM != nil {
			where = append(where, "(distance_km IS NULL OR distance_km <= ?)")
			args = append(args, *spec.DistanceLimitKM)
		}
		if spec.MinRating != nil {
			where = append(where, "(rating IS NULL OR rating >= ?)")
			args = append(args, *spec.MinRating)
		}
		if spec.MaxTravelMinutes != nil {
			where = append(where, "(travel_minutes IS NULL OR travel_minutes <= ?)")
			args = append(args, *spec.MaxTravelMinutes)
		}
		if len(spec.Buckets) > 0 {
			placeholders := make([]string, len(spec.Buckets))
			for i, b := range spec.Buckets {
				placeholders[i] = "?"
				args = append(args, string(b))
			}
			where = append(where, fmt.Sprintf("bucket IN (%s)", strings.Join(placeholders, ",")))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(candidateColumns)
	sb.WriteString(" FROM candidates")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY rating DESC NULLS LAST, id ASC LIMIT ?")
	args = append(args, limit)
	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (selection.Candidate, error) {
	var (
		c                              selection.Candidate
		bucket, tags, energy, keywords string
		rating, distance, travel, wx   sql.NullFloat64
	)
	if err := row.Scan(&c.ID, &c.Name, &bucket, &tags, &rating, &distance, &travel, &energy, &wx, &c.Region, &c.Description, &keywords); err != nil {
		return selection.Candidate{}, fmt.Errorf("scan candidate: %w", err)
	}
	c.Bucket = selection.Bucket(bucket)
	c.Tags = splitList(tags)
	c.Keywords = splitList(keywords)
	c.Rating = fromNull(rating)
	c.DistanceKM = fromNull(distance)
	c.TravelMinutes = fromNull(travel)
	c.WeatherSuitability = fromNull(wx)
	level, err := selection.ParseEnergyLevel(energy)
	if err != nil {
		return selection.Candidate{}, fmt.Errorf("candidate %s: %w", c.ID, err)
	}
	c.Energy = level
	return c, nil
}

func checkJoinable(c *selection.Candidate) error {
	for _, list := range [][]string{c.Tags, c.Keywords} {
		for _, v := range list {
			if strings.Contains(v, ",") {
				return fmt.Errorf("%w: candidate %s: value %q must not contain a comma", selection.ErrInvalidRequest, c.ID, v)
			}
		}
	}
	if c.ID == "" {
		return errors.New("candidate id is required")
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
