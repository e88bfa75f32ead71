package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestIdempotencyCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	store := NewIdempotencyStore(mock)
	ctx := context.Background()

	mock.ExpectQuery("SELECT request_hash, response_json").WithArgs("u1", "k1", "leave.submit").
		WillReturnError(pgx.ErrNoRows)
	if _, found, err := store.Check(ctx, "u1", "leave.submit", "k1", "h1"); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	mock.ExpectQuery("SELECT request_hash, response_json").WithArgs("u1", "k1", "leave.submit").
		WillReturnRows(pgxmock.NewRows([]string{"request_hash", "response_json"}).AddRow("h1", json.RawMessage(`{"id":"a1"}`)))
	stored, found, err := store.Check(ctx, "u1", "leave.submit", "k1", "h1")
	if err != nil || !found || string(stored) != `{"id":"a1"}` {
		t.Fatalf("expected replay, got %s found=%v err=%v", stored, found, err)
	}

	mock.ExpectQuery("SELECT request_hash, response_json").WithArgs("u1", "k1", "leave.submit").
		WillReturnRows(pgxmock.NewRows([]string{"request_hash", "response_json"}).AddRow("other", json.RawMessage(`{}`)))
	if _, _, err := store.Check(ctx, "u1", "leave.submit", "k1", "h1"); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIdempotencySave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	store := NewIdempotencyStore(mock)
	payload := json.RawMessage(`{"id":"a1"}`)

	mock.ExpectExec("INSERT INTO idempotency_keys").WithArgs("u1", "k1", "leave.submit", "h1", payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.Save(context.Background(), "u1", "leave.submit", "k1", "h1", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO idempotency_keys").WithArgs("u1", "k1", "leave.submit", "h2", payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	if err := store.Save(context.Background(), "u1", "leave.submit", "k1", "h2", payload); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIdempotencyWithoutKeyIsNoop(t *testing.T) {
	store := NewIdempotencyStore(nil)
	if _, found, err := store.Check(context.Background(), "u1", "e", "", "h"); err != nil || found {
		t.Fatalf("expected noop, got found=%v err=%v", found, err)
	}
	if err := store.Save(context.Background(), "u1", "e", "k", "h", nil); err != nil {
		t.Fatalf("expected noop save, got %v", err)
	}
}
