// Package postgres implements repository.Store on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/pkg/metrics"
)

var _ repository.Store = (*Store)(nil)

const uniqueViolation = "23505"

// uniqueConstraints maps constraint and index names from the schema to the
// sentinel the rest of the application understands.
var uniqueConstraints = map[string]error{
	"users_username_key":        repository.ErrDuplicateUsername,
	"users_email_key":           repository.ErrDuplicateEmail,
	"forum_categories_slug_key": repository.ErrDuplicateSlug,
}

type Store struct {
	BaseRepository
	metrics *metrics.Metrics
}

// NewStore wraps an open pool. m may be nil.
func NewStore(db *sqlx.DB, m *metrics.Metrics) *Store {
	return &Store{
		BaseRepository: NewBaseRepository(db),
		metrics:        m,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if sentinel, ok := uniqueConstraints[pqErr.Constraint]; ok {
			return sentinel
		}
	}
	return err
}

func (s *Store) observe(op string, start time.Time, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	s.metrics.ObserveDB(op, start, err)
}

func (s *Store) get(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := s.db.GetContext(ctx, dest, query, args...)
	s.observe(op, start, err)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), mapError(err))
	}
	return mapError(err)
}

func (s *Store) selectAll(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := s.db.SelectContext(ctx, dest, query, args...)
	s.observe(op, start, err)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	return nil
}

// insert runs a named INSERT ... RETURNING * and scans the stored row back
// into row, picking up the id, defaults and server timestamps.
func (s *Store) insert(ctx context.Context, op, query string, row interface{}) error {
	start := time.Now()
	err := func() error {
		rows, err := sqlx.NamedQueryContext(ctx, s.db, query, row)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return sql.ErrNoRows
		}
		return rows.StructScan(row)
	}()
	s.observe(op, start, err)

	mapped := mapError(err)
	if mapped != nil && mapped == err {
		return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	return mapped
}

// exec runs a statement that must touch at least one row.
func (s *Store) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	s.observe(op, start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	return res.RowsAffected()
}

// update applies changes to the single row of table matched by where and
// scans the result into dest. where numbers its placeholders from $1 over
// whereArgs; the SET placeholders follow. With no changes the row is read
// back unchanged, so an absent row still yields ErrNotFound.
func (s *Store) update(ctx context.Context, op string, dest interface{}, table string, changes []model.Change, touch bool, where string, whereArgs ...interface{}) error {
	if len(changes) == 0 && !touch {
		return s.get(ctx, op, dest, fmt.Sprintf("SELECT * FROM %s WHERE %s", table, where), whereArgs...)
	}

	args := append([]interface{}{}, whereArgs...)
	sets := make([]string, 0, len(changes)+1)
	for _, c := range changes {
		args = append(args, c.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Column, len(args)))
	}
	if touch {
		sets = append(sets, "updated_at = NOW()")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *", table, strings.Join(sets, ", "), where)
	return s.get(ctx, op, dest, query, args...)
}
