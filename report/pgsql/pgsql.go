// Package pgsql persists report runs in PostgreSQL.
package pgsql

import (
	"context"
	"database/sql"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/report"
)

var log = logging.Logger("pgsql")

var (
	ErrNoSource       = errors.New("pgsql: no database connection string specified")
	ErrDuplicateRun   = errors.New("pgsql: run already stored")
	ErrBackendFailure = errors.New("pgsql: backend failure")
)

const schema = `
CREATE TABLE IF NOT EXISTS hhw_run (
	id          UUID PRIMARY KEY,
	scenario    TEXT NOT NULL,
	scheme      TEXT NOT NULL,
	tolerance   DOUBLE PRECISION NOT NULL,
	started     TIMESTAMPTZ NOT NULL,
	elapsed_ns  BIGINT NOT NULL,
	rhos        DOUBLE PRECISION[] NOT NULL,
	time_grids  INTEGER[] NOT NULL
);
CREATE TABLE IF NOT EXISTS hhw_case (
	run_id      UUID NOT NULL REFERENCES hhw_run(id) ON DELETE CASCADE,
	rho         DOUBLE PRECISION NOT NULL,
	time_grid   INTEGER NOT NULL,
	computed    DOUBLE PRECISION NOT NULL,
	published   NUMERIC,
	delta       DOUBLE PRECISION NOT NULL,
	gamma       DOUBLE PRECISION NOT NULL,
	theta       DOUBLE PRECISION NOT NULL,
	elapsed_ns  BIGINT NOT NULL,
	PRIMARY KEY (run_id, rho, time_grid)
);`

const (
	insertRun = `INSERT INTO hhw_run (id, scenario, scheme, tolerance, started, elapsed_ns, rhos, time_grids)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertCase = `INSERT INTO hhw_case (run_id, rho, time_grid, computed, published, delta, gamma, theta, elapsed_ns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// Store is a Postgres-backed run store.
type Store struct {
	DB *sql.DB
}

// Open connects to source and verifies the connection.
func Open(ctx context.Context, source string) (*Store, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrNoSource
	}
	db, err := sql.Open("postgres", source)
	if err != nil {
		return nil, errors.Wrap(err, "pgsql: could not open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pgsql: could not open database")
	}
	return &Store{DB: db}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, schema)
	return handleError("migrate", err)
}

// SaveRun stores r and its cases in one transaction.
func (s *Store) SaveRun(ctx context.Context, r *report.Run) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return handleError("begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rhos, grids := Axes(r)
	if _, err := tx.ExecContext(ctx, insertRun, r.ID, r.Scenario, r.Scheme, r.Tolerance,
		r.Started, int64(r.Elapsed), pq.Array(rhos), pq.Array(grids)); err != nil {
		if isErrUniqueViolation(err) {
			return ErrDuplicateRun
		}
		return handleError("insert run", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertCase)
	if err != nil {
		return handleError("prepare case", err)
	}
	defer stmt.Close()
	for _, row := range r.Rows {
		var published sql.NullString
		if row.Published != nil {
			published = sql.NullString{String: row.Published.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.ID, row.Rho, row.TimeGrid, row.Computed, published,
			row.Delta, row.Gamma, row.Theta, int64(row.Elapsed)); err != nil {
			return handleError("insert case", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return handleError("commit", err)
	}
	log.Infow("run stored", "id", r.ID, "cases", len(r.Rows))
	return nil
}

// Axes returns the distinct correlations and time grids of r in row order.
func Axes(r *report.Run) ([]float64, []int64) {
	var rhos []float64
	var grids []int64
	seenRho := map[float64]bool{}
	seenGrid := map[int]bool{}
	for _, row := range r.Rows {
		if !seenRho[row.Rho] {
			seenRho[row.Rho] = true
			rhos = append(rhos, row.Rho)
		}
		if !seenGrid[row.TimeGrid] {
			seenGrid[row.TimeGrid] = true
			grids = append(grids, int64(row.TimeGrid))
		}
	}
	return rhos, grids
}

func handleError(desc string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*pq.Error); ok || err == sql.ErrTxDone {
		log.Errorw("query failed", "op", desc, "err", err)
		return errors.Wrap(ErrBackendFailure, desc)
	}
	return errors.Wrap(err, desc)
}

func isErrUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
