package leave

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeScheduleFullDay(t *testing.T) {
	cases := []struct {
		name     string
		category Category
		start    string
		days     float64
		resume   string
	}{
		{"casual over weekend", CategoryCasual, "2024-06-07", 3, "2024-06-12"},
		{"vocation within week", CategoryVocation, "2024-06-03", 2, "2024-06-05"},
		{"friday single day", CategoryShort, "2024-06-07", 1, "2024-06-10"},
		{"saturday start", CategoryCasual, "2024-06-08", 1, "2024-06-11"},
		{"sunday start", CategoryCasual, "2024-06-09", 2, "2024-06-12"},
		{"half casual", CategoryCasual, "2024-06-05", 0.5, "2024-06-05"},
		{"one and a half", CategoryCasual, "2024-06-06", 1.5, "2024-06-07"},
		{"ten days", CategoryVocation, "2024-06-03", 10, "2024-06-17"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ComputeSchedule(tc.category, day(tc.start), tc.days)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !s.ResumeDate.Equal(day(tc.resume)) {
				t.Fatalf("expected resume %s, got %s", tc.resume, s.ResumeDate.Format("2006-01-02"))
			}
			if isWeekend(s.ResumeDate) {
				t.Fatalf("resume date %s is a weekend", s.ResumeDate.Format("2006-01-02"))
			}
			if s.LeaveDays != tc.days || s.StartTime != "" || s.ResumeTime != "" {
				t.Fatalf("unexpected schedule: %+v", s)
			}
		})
	}
}

func TestComputeScheduleHalfDay(t *testing.T) {
	cases := []struct {
		category   Category
		start      string
		startTime  string
		resumeTime string
		resume     string
	}{
		{CategoryMorning, "2024-06-07", "08:30", "12:30", "2024-06-07"},
		{CategoryAfternoon, "2024-06-07", "12:30", "16:30", "2024-06-10"},
		{CategoryMidday, "2024-06-07", "10:30", "14:30", "2024-06-10"},
		{CategoryAfternoon, "2024-06-04", "12:30", "16:30", "2024-06-05"},
	}
	for _, tc := range cases {
		s, err := ComputeSchedule(tc.category, day(tc.start), 4)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.category, err)
		}
		if s.LeaveDays != 0.5 {
			t.Fatalf("%s: expected 0.5 days, got %v", tc.category, s.LeaveDays)
		}
		if s.StartTime != tc.startTime || s.ResumeTime != tc.resumeTime {
			t.Fatalf("%s: unexpected times %s-%s", tc.category, s.StartTime, s.ResumeTime)
		}
		if !s.ResumeDate.Equal(day(tc.resume)) {
			t.Fatalf("%s: expected resume %s, got %s", tc.category, tc.resume, s.ResumeDate.Format("2006-01-02"))
		}
	}
}

func TestComputeScheduleDeterministic(t *testing.T) {
	start := time.Date(2024, 6, 7, 15, 45, 0, 0, time.UTC)
	first, err := ComputeSchedule(CategoryCasual, start, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := ComputeSchedule(CategoryCasual, start, 3)
	if first != second {
		t.Fatalf("expected identical schedules, got %+v and %+v", first, second)
	}
	if !first.StartDate.Equal(day("2024-06-07")) {
		t.Fatalf("expected time of day dropped, got %v", first.StartDate)
	}
}

func TestComputeScheduleRejects(t *testing.T) {
	cases := []struct {
		name     string
		category Category
		start    time.Time
		days     float64
	}{
		{"zero days", CategoryCasual, day("2024-06-07"), 0},
		{"negative days", CategoryVocation, day("2024-06-07"), -1},
		{"quarter day", CategoryCasual, day("2024-06-07"), 1.25},
		{"unknown category", Category("Medical"), day("2024-06-07"), 1},
		{"missing start", CategoryCasual, time.Time{}, 1},
		{"over a year", CategoryCasual, day("2024-06-07"), 366},
		{"huge count", CategoryVocation, day("2024-06-07"), 1e12},
	}
	for _, tc := range cases {
		_, err := ComputeSchedule(tc.category, tc.start, tc.days)
		if KindOf(err) != KindValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestNextWorkingDay(t *testing.T) {
	if got := NextWorkingDay(day("2024-06-08")); !got.Equal(day("2024-06-10")) {
		t.Fatalf("saturday: got %s", got.Format("2006-01-02"))
	}
	if got := NextWorkingDay(day("2024-06-10")); !got.Equal(day("2024-06-11")) {
		t.Fatalf("monday: got %s", got.Format("2006-01-02"))
	}
}
