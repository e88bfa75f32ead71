package leave

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPendingActing  Status = "Pending Acting Acceptance"
	StatusActingRejected Status = "Acting Rejected"
	StatusPending        Status = "Pending"
	StatusRecommended    Status = "Recommended"
	StatusApproved       Status = "Approved"
	StatusRejected       Status = "Rejected"
	StatusCancelled      Status = "Cancelled"
)

var AllStatuses = []Status{
	StatusPendingActing,
	StatusActingRejected,
	StatusPending,
	StatusRecommended,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusActingRejected, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

type Category string

const (
	CategoryCasual    Category = "Casual"
	CategoryVocation  Category = "Vocation"
	CategoryShort     Category = "Short Leave"
	CategoryMorning   Category = "Morning Leave"
	CategoryAfternoon Category = "Afternoon Leave"
	CategoryMidday    Category = "Midday Leave"
)

var Categories = []Category{
	CategoryCasual,
	CategoryVocation,
	CategoryShort,
	CategoryMorning,
	CategoryAfternoon,
	CategoryMidday,
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.TrimSpace(raw))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown leave category %q", raw)
}

func (c Category) HalfDay() bool {
	switch c {
	case CategoryMorning, CategoryAfternoon, CategoryMidday:
		return true
	}
	return false
}

// CommentSlot names the one comment column a transition may write.
type CommentSlot int

const (
	SlotNone CommentSlot = iota
	SlotActing
	SlotRecommender
	SlotApprover
)

func (s CommentSlot) String() string {
	switch s {
	case SlotActing:
		return "acting"
	case SlotRecommender:
		return "recommender"
	case SlotApprover:
		return "approver"
	}
	return "none"
}

func (s CommentSlot) column() string {
	switch s {
	case SlotActing:
		return "acting_comment"
	case SlotRecommender:
		return "recommender_comment"
	case SlotApprover:
		return "approver_comment"
	}
	return ""
}

// Queue selects a work list.
type Queue string

const (
	QueueMine            Queue = "mine"
	QueueActing          Queue = "acting"
	QueueRecommendations Queue = "recommendations"
	QueueApprovals       Queue = "approvals"
)

func ParseQueue(raw string) (Queue, error) {
	switch q := Queue(strings.ToLower(strings.TrimSpace(raw))); q {
	case "":
		return QueueMine, nil
	case QueueMine, QueueActing, QueueRecommendations, QueueApprovals:
		return q, nil
	}
	return "", fmt.Errorf("unknown queue %q", raw)
}

const (
	AuditEntityApplication = "leave_application"
	AuditEntityBalance     = "leave_balance"
)
