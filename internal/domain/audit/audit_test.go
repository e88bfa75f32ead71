package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT 1", Filter{EntityType: "leave_application", EntityID: "a1"})
	if !strings.Contains(query, "entity_type = $1") || !strings.Contains(query, "entity_id = $2") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[1] != "a1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestRecordAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()
	svc := New(mock)

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("u1", "leave.approve", "leave_application", "a1", []byte(nil), []byte(`{"status":"Approved"}`), "req-1", "10.0.0.1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = svc.Record(context.Background(), Entry{
		ActorID: "u1", Action: "leave.approve", EntityType: "leave_application", EntityID: "a1",
		RequestID: "req-1", IP: "10.0.0.1", After: map[string]string{"status": "Approved"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	now := time.Now()
	cols := []string{"id", "actor_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at", "before_json", "after_json"}
	mock.ExpectQuery("FROM audit_events WHERE 1=1 AND entity_id = \\$1").
		WithArgs("a1", 20, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), "u1", "leave.approve", "leave_application", "a1", "req-1", "10.0.0.1", now, []byte("null"), []byte(`{"status":"Approved"}`)))

	events, err := svc.List(context.Background(), Filter{EntityID: "a1"}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Before != nil || string(events[0].After) != `{"status":"Approved"}` {
		t.Fatalf("unexpected events: %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
