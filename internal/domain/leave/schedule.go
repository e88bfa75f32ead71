package leave

import (
	"fmt"
	"math"
	"time"
)

const (
	halfDay = 0.5
	// maxLeaveDays bounds a single request; leave_days is NUMERIC(5,1).
	maxLeaveDays = 365
)

// Schedule is the computed shape of a leave request.
type Schedule struct {
	Category   Category  `json:"leaveType"`
	LeaveDays  float64   `json:"leaveDays"`
	StartDate  time.Time `json:"startDate"`
	StartTime  string    `json:"startTime,omitempty"`
	ResumeDate time.Time `json:"resumeDate"`
	ResumeTime string    `json:"resumeTime,omitempty"`
}

type halfDaySlot struct {
	start, resume string
	nextDay       bool
}

var halfDaySlots = map[Category]halfDaySlot{
	CategoryMorning:   {start: "08:30", resume: "12:30"},
	CategoryAfternoon: {start: "12:30", resume: "16:30", nextDay: true},
	CategoryMidday:    {start: "10:30", resume: "14:30", nextDay: true},
}

// ComputeSchedule derives the day count, clock times and resume date for a
// request. Dates are civil dates in UTC; the time of day on start is ignored.
func ComputeSchedule(category Category, start time.Time, leaveDays float64) (Schedule, error) {
	start = civilDate(start)
	if start.IsZero() {
		return Schedule{}, validationError(Issue{Field: "startDate", Message: "start date is required"})
	}

	if slot, ok := halfDaySlots[category]; ok {
		resume := start
		if slot.nextDay {
			resume = NextWorkingDay(start)
		}
		return Schedule{
			Category:   category,
			LeaveDays:  halfDay,
			StartDate:  start,
			StartTime:  slot.start,
			ResumeDate: resume,
			ResumeTime: slot.resume,
		}, nil
	}

	switch category {
	case CategoryCasual, CategoryVocation, CategoryShort:
	default:
		return Schedule{}, validationError(Issue{Field: "leaveType", Message: fmt.Sprintf("unknown leave category %q", category)})
	}
	if err := validateLeaveDays(leaveDays); err != nil {
		return Schedule{}, err
	}

	s := Schedule{
		Category:   category,
		LeaveDays:  leaveDays,
		StartDate:  start,
		ResumeDate: AddBusinessDays(start, int(math.Floor(leaveDays))),
	}
	if leaveDays >= 1 && !s.ResumeDate.After(s.StartDate) {
		return Schedule{}, validationError(Issue{Field: "resumeDate", Message: "resume date must be after start date for full-day leave"})
	}
	return s, nil
}

func validateLeaveDays(days float64) error {
	if math.IsNaN(days) || math.IsInf(days, 0) || days <= 0 {
		return validationError(Issue{Field: "leaveDays", Message: "leave days must be positive"})
	}
	if days > maxLeaveDays {
		return validationError(Issue{Field: "leaveDays", Message: fmt.Sprintf("leave days must not exceed %d", maxLeaveDays)})
	}
	if math.Mod(days, halfDay) != 0 {
		return validationError(Issue{Field: "leaveDays", Message: "leave days must be a multiple of 0.5"})
	}
	return nil
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextWorkingDay is the first weekday strictly after d.
func NextWorkingDay(d time.Time) time.Time {
	next := civilDate(d).AddDate(0, 0, 1)
	for isWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// AddBusinessDays moves a weekend start to the following Monday, advances n
// weekdays, and never lands on a weekend.
func AddBusinessDays(start time.Time, n int) time.Time {
	current := civilDate(start)
	for isWeekend(current) {
		current = current.AddDate(0, 0, 1)
	}
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		if !isWeekend(current) {
			added++
		}
	}
	return current
}

func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
