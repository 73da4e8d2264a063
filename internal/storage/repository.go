// Package storage archives finished revaluation runs in SQLite. The archive
// is write-once history: runs are never read back to skip a request.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rivaluta/internal/core"
	"rivaluta/internal/log"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

type SQLiteRepository struct {
	db *sql.DB
}

// RunSummary is one row of the history listing.
type RunSummary struct {
	ID        int64
	Start     core.Period
	End       core.Period
	Amount    core.Amount
	Reference core.Period
	StartedAt time.Time
	Succeeded int
	Failed    int
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Name implements services.OutcomeSink
func (r *SQLiteRepository) Name() string { return "history" }

// RecordRun implements services.OutcomeSink. It stores the run and its
// outcomes in one transaction and sets run.ID.
func (r *SQLiteRepository) RecordRun(ctx context.Context, run *core.Run) error {
	id, err := r.SaveRun(ctx, *run)
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// SaveRun inserts a run with its outcomes and returns the new run ID.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run core.Run) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (start_month, start_year, end_month, end_year, amount,
			reference_month, reference_year, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Start.MonthIndex(), run.Start.Year(),
		run.End.MonthIndex(), run.End.Year(),
		int64(run.Amount),
		run.Reference.MonthIndex(), run.Reference.Year(),
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, seq, month, year, coefficient, revalued_amount, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range run.Outcomes {
		var coefficient, revalued, kind, message sql.NullString
		if o.OK() {
			coefficient = sql.NullString{String: o.Result.Coefficient, Valid: true}
			revalued = sql.NullString{String: o.Result.RevaluedAmount, Valid: true}
		} else {
			kind = sql.NullString{String: string(o.Kind), Valid: true}
			if o.Err != nil {
				message = sql.NullString{String: o.Err.Error(), Valid: true}
			}
		}
		if _, err := stmt.ExecContext(ctx, id, i, o.Period.MonthIndex(), o.Period.Year(),
			coefficient, revalued, kind, message); err != nil {
			return 0, fmt.Errorf("insert outcome %s: %w", o.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Run saved to history",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpRecord,
		log.FieldRunID, id,
		"outcomes", len(run.Outcomes))

	return id, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// lists every run.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.start_month, r.start_year, r.end_month, r.end_year, r.amount,
			r.reference_month, r.reference_year, r.started_at,
			COALESCE(SUM(CASE WHEN o.error_kind IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN o.error_kind IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN outcomes o ON o.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			s                          RunSummary
			sm, sy, em, ey, refM, refY int
			amount, startedAt          int64
		)
		if err := rows.Scan(&s.ID, &sm, &sy, &em, &ey, &amount, &refM, &refY, &startedAt, &s.Succeeded, &s.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(startedAt).UTC()
		if s.Start, err = core.NewPeriod(sm, sy); err != nil {
			return nil, fmt.Errorf("run %d start: %w", s.ID, err)
		}
		if s.End, err = core.NewPeriod(em, ey); err != nil {
			return nil, fmt.Errorf("run %d end: %w", s.ID, err)
		}
		if s.Reference, err = core.NewPeriod(refM, refY); err != nil {
			return nil, fmt.Errorf("run %d reference: %w", s.ID, err)
		}
		s.Amount = core.Amount(amount)
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetRun loads one run with its outcomes in period order.
func (r *SQLiteRepository) GetRun(ctx context.Context, id int64) (*core.Run, error) {
	var (
		run                        core.Run
		sm, sy, em, ey, refM, refY int
		amount, started, finished  int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, start_month, start_year, end_month, end_year, amount,
			reference_month, reference_year, started_at, finished_at
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &sm, &sy, &em, &ey, &amount, &refM, &refY, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.Start, err = core.NewPeriod(sm, sy); err != nil {
		return nil, fmt.Errorf("run %d start: %w", id, err)
	}
	if run.End, err = core.NewPeriod(em, ey); err != nil {
		return nil, fmt.Errorf("run %d end: %w", id, err)
	}
	if run.Reference, err = core.NewPeriod(refM, refY); err != nil {
		return nil, fmt.Errorf("run %d reference: %w", id, err)
	}
	run.Amount = core.Amount(amount)
	run.StartedAt = time.UnixMilli(started).UTC()
	run.FinishedAt = time.UnixMilli(finished).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT month, year, coefficient, revalued_amount, error_kind, error_message
		FROM outcomes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("get outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			month, year                      int
			coefficient, revalued, kind, msg sql.NullString
		)
		if err := rows.Scan(&month, &year, &coefficient, &revalued, &kind, &msg); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		p, err := core.NewPeriod(month, year)
		if err != nil {
			return nil, fmt.Errorf("run %d outcome period: %w", id, err)
		}
		if kind.Valid {
			run.Outcomes = append(run.Outcomes, core.Outcome{
				Period: p,
				Kind:   core.ErrorKind(kind.String),
				Err:    errors.New(msg.String),
			})
			continue
		}
		run.Outcomes = append(run.Outcomes, core.Success(p, core.Result{
			Coefficient:    coefficient.String,
			RevaluedAmount: revalued.String,
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return &run, nil
}
