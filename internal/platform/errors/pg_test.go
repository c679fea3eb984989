package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col}
}

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22003", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"57P03", ErrorCodeUnavailable},
		{"42P01", ErrorCodeDB},
		{"40001", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code, ""))
		if !ok || got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v,%v want %v", c.code, got, ok, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil || FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("nil should pass through")
	}

	err := FromPostgres(pg("23502", "saccade_amplitude"), "upsert features")
	e, ok := As(err)
	if !ok || e.Code() != ErrorCodeValidation || e.Field() != "saccade_amplitude" {
		t.Fatalf("FromPostgres = %+v", e)
	}

	wrapped := fmt.Errorf("exec: %w", pg("42P01", ""))
	if !IsUndefinedTable(FromPostgresf(wrapped, "list %s", "features")) {
		t.Fatalf("IsUndefinedTable should see through wrapping")
	}
	if CodeOf(FromPostgres(stderrs.New("conn reset"), "ping")) != ErrorCodeDB {
		t.Fatalf("foreign errors map to DB")
	}
}

func TestIsRetryable(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57P03"} {
		if !IsRetryable(pg(code, "")) {
			t.Fatalf("%s should be retryable", code)
		}
	}
	if IsRetryable(pg("23505", "")) {
		t.Fatalf("23505 should not be retryable")
	}
	if !IsRetryable(stderrs.New("ERROR: deadlock detected")) {
		t.Fatalf("deadlock text should be retryable")
	}
	if IsRetryable(fmt.Errorf("q: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline should not be retryable")
	}
	if IsRetryable(nil) || IsRetryable(stderrs.New("nope")) {
		t.Fatalf("nil and plain errors are not retryable")
	}
	if !Retryable(pg("40001", "")) {
		t.Fatalf("Retryable should delegate")
	}
	if !IsDuplicateKey(Wrap(pg("23505", ""), ErrorCodeDuplicateKey, "dup")) {
		t.Fatalf("IsDuplicateKey through Wrap")
	}
}
