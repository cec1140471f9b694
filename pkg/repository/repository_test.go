package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/saldo/pkg/repository"
)

var (
	errNotFound  = errors.New("ledger not found")
	errDuplicate = errors.New("ledger already exists")
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	checkViolation := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find ledger: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, errNotFound},
		{"check violation passes through", checkViolation, checkViolation},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type affected struct {
	rows int64
	err  error
}

func (a affected) LastInsertId() (int64, error) { return 0, nil }
func (a affected) RowsAffected() (int64, error) { return a.rows, a.err }

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func (f execFunc) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return f(ctx, query, args...)
}

func TestExecExpectOne(t *testing.T) {
	errDriver := errors.New("driver: bad connection")
	errCount := errors.New("rows affected unsupported")

	tests := []struct {
		name   string
		result sql.Result
		err    error
		want   error
	}{
		{"approved one ledger", affected{rows: 1}, nil, nil},
		{"ledger missing", affected{rows: 0}, nil, sql.ErrNoRows},
		{"exec failure", nil, errDriver, errDriver},
		{"count failure", affected{err: errCount}, nil, errCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotArgs []any
			e := execFunc(func(ctx context.Context, query string, args ...any) (sql.Result, error) {
				gotArgs = args
				return tt.result, tt.err
			})

			err := repository.ExecExpectOne(context.Background(), e,
				"UPDATE ledgers SET approved_by = $1 WHERE id = $2", "mkoch", "ledger-1")
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("ExecExpectOne error = %v, want %v", err, tt.want)
			}
			if len(gotArgs) != 2 {
				t.Errorf("args = %v, want 2", gotArgs)
			}
		})
	}

	t.Run("missing ledger maps to not found", func(t *testing.T) {
		e := execFunc(func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return affected{}, nil
		})
		err := repository.MapError(repository.ExecExpectOne(context.Background(), e, "DELETE FROM ledgers WHERE id = $1", "x"), errNotFound, errDuplicate)
		if err != errNotFound {
			t.Errorf("error = %v, want %v", err, errNotFound)
		}
	})
}
