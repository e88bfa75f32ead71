package leave

import (
	"strings"
	"time"

	"leaveflow/internal/domain/auth"
)

// countsAsCasual covers Casual and every "... Leave" category.
func countsAsCasual(c Category) bool {
	return c == CategoryCasual || strings.Contains(string(c), "Leave")
}

// Summarize produces one row per member. approved must already be limited to
// approved applications of the year the balances belong to. An empty
// divisionID keeps every member.
func Summarize(members []auth.Member, balances []Balance, approved []Application, divisionID string) []SummaryRow {
	byUser := make(map[string]Balance, len(balances))
	for _, b := range balances {
		byUser[b.UserID] = b
	}
	taken := make(map[string]*SummaryRow)
	for _, app := range approved {
		if app.Status != StatusApproved {
			continue
		}
		row, ok := taken[app.UserID]
		if !ok {
			row = &SummaryRow{}
			taken[app.UserID] = row
		}
		switch {
		case app.Category == CategoryVocation:
			row.VocationTaken += app.LeaveDays
		case countsAsCasual(app.Category):
			row.CasualTaken += app.LeaveDays
		}
	}

	rows := make([]SummaryRow, 0, len(members))
	for _, m := range members {
		if divisionID != "" && m.DivisionID != divisionID {
			continue
		}
		b := byUser[m.ID]
		row := SummaryRow{
			UserID:           m.ID,
			UserName:         m.Name,
			DivisionID:       m.DivisionID,
			CasualEntitled:   b.Casual,
			VocationEntitled: b.Vocation,
			Past:             b.Past,
		}
		if t, ok := taken[m.ID]; ok {
			row.CasualTaken = t.CasualTaken
			row.VocationTaken = t.VocationTaken
		}
		row.CasualRemaining = row.CasualEntitled - row.CasualTaken
		row.VocationRemaining = row.VocationEntitled - row.VocationTaken
		rows = append(rows, row)
	}
	return rows
}

// OnLeave returns the approved applications covering day, counting the whole
// resume day as covered.
func OnLeave(approved []Application, day time.Time) []Application {
	day = civilDate(day)
	out := []Application{}
	for _, app := range approved {
		if app.Status != StatusApproved {
			continue
		}
		if day.Before(civilDate(app.StartDate)) || day.After(civilDate(app.ResumeDate)) {
			continue
		}
		out = append(out, app)
	}
	return out
}
