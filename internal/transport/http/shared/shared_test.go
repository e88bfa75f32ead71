package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-07")
	if err != nil || !got.Equal(time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v %v", got, err)
	}
	got, err = ParseDate("2024-06-07T22:10:00+05:30")
	if err != nil || got.Day() != 7 || got.Hour() != 0 {
		t.Fatalf("expected civil date from RFC3339, got %v %v", got, err)
	}
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time, got %v %v", got, err)
	}
	if _, err := ParseDate("07/06/2024"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3", nil)
	p := ParsePagination(req, 20, 100)
	if p.Limit != 100 || p.Offset != 0 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("unexpected ip %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("unexpected forwarded ip %q", got)
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Required("reason", " ", "is required")
	v.HalfDays("leaveDays", 1.25)
	v.HalfDays("other", 2.5)
	v.NonNegative("casual", -1)
	v.Enum("queue", "MINE", []string{"mine", "acting"}, "unknown queue")

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected three issues, got %+v", issues)
	}
	if issues[0].Field != "casual" || issues[1].Field != "leaveDays" || issues[2].Field != "reason" {
		t.Fatalf("issues must be sorted by field: %+v", issues)
	}
}
