package leave

import "time"

type Comments struct {
	Acting      string `json:"acting,omitempty"`
	Recommender string `json:"recommender,omitempty"`
	Approver    string `json:"approver,omitempty"`
}

type Application struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	UserName          string    `json:"userName"`
	Designation       string    `json:"designation"`
	DivisionID        string    `json:"divisionId"`
	Category          Category  `json:"leaveType"`
	StartDate         time.Time `json:"startDate"`
	StartTime         string    `json:"startTime,omitempty"`
	ResumeDate        time.Time `json:"resumeDate"`
	ResumeTime        string    `json:"resumeTime,omitempty"`
	LeaveDays         float64   `json:"leaveDays"`
	Reason            string    `json:"reason"`
	ActingOfficerID   string    `json:"actingOfficerId"`
	RecommenderID     string    `json:"recommenderId"`
	ApproverID        string    `json:"approverId"`
	SubjectInChargeID string    `json:"subjectInChargeId"`
	Status            Status    `json:"status"`
	Comments          Comments  `json:"comments"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ActionRequest is a workflow action as received from a caller.
type ActionRequest struct {
	ApplicationID string
	Action        string
	ActorID       string
	Comment       string
}

// SubmitRequest carries what the requester chooses; the rest is derived.
type SubmitRequest struct {
	RequesterID     string
	Category        string
	StartDate       time.Time
	LeaveDays       float64
	Reason          string
	ActingOfficerID string
	RecommenderID   string
	ApproverID      string
}

type ListFilter struct {
	UserID          string
	ActingOfficerID string
	RecommenderID   string
	ApproverID      string
	DivisionID      string
	Statuses        []Status
	StartYear       int
	ActiveOn        time.Time
	Limit           int
	Offset          int
}

type ListResult struct {
	Items []Application `json:"items"`
	Total int           `json:"total"`
}

type Balance struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Year      int       `json:"year"`
	Casual    float64   `json:"casual"`
	Vocation  float64   `json:"vocation"`
	Past      float64   `json:"past"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SummaryRow struct {
	UserID            string  `json:"userId"`
	UserName          string  `json:"userName"`
	DivisionID        string  `json:"divisionId,omitempty"`
	CasualEntitled    float64 `json:"casualEntitled"`
	VocationEntitled  float64 `json:"vocationEntitled"`
	Past              float64 `json:"past"`
	CasualTaken       float64 `json:"casualTaken"`
	VocationTaken     float64 `json:"vocationTaken"`
	CasualRemaining   float64 `json:"casualRemaining"`
	VocationRemaining float64 `json:"vocationRemaining"`
}
