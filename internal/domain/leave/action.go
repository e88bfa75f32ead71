package leave

import "strings"

const (
	ActionAcceptActing = "Accept Acting"
	ActionRejectActing = "Reject Acting"
	ActionRecommend    = "Recommend"
	ActionApprove      = "Approve"
	ActionReject       = "Reject"
)

// Command is one of the five workflow actions. Each variant carries only the
// comment it may write; the slot is decided by the transition table.
type Command interface {
	Name() string
	comment() string
}

type AcceptActing struct{ Comment string }

type RejectActing struct{ Comment string }

type Recommend struct{ Comment string }

type Approve struct{ Comment string }

type Reject struct{ Comment string }

func (AcceptActing) Name() string { return ActionAcceptActing }
func (RejectActing) Name() string { return ActionRejectActing }
func (Recommend) Name() string    { return ActionRecommend }
func (Approve) Name() string      { return ActionApprove }
func (Reject) Name() string       { return ActionReject }

func (c AcceptActing) comment() string { return c.Comment }
func (c RejectActing) comment() string { return c.Comment }
func (c Recommend) comment() string    { return c.Comment }
func (c Approve) comment() string      { return c.Comment }
func (c Reject) comment() string       { return c.Comment }

// ParseAction turns a wire action name into a Command.
func ParseAction(raw, comment string) (Command, error) {
	comment = strings.TrimSpace(comment)
	switch strings.TrimSpace(raw) {
	case ActionAcceptActing:
		return AcceptActing{Comment: comment}, nil
	case ActionRejectActing:
		return RejectActing{Comment: comment}, nil
	case ActionRecommend:
		return Recommend{Comment: comment}, nil
	case ActionApprove:
		return Approve{Comment: comment}, nil
	case ActionReject:
		return Reject{Comment: comment}, nil
	}
	return nil, invalidTransition("unknown action %q", raw)
}

// AuditAction is the audit log name for a workflow action, e.g. "leave.accept_acting".
func AuditAction(action string) string {
	return "leave." + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(action)), " ", "_")
}
