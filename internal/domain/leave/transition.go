package leave

// Actor is the caller as resolved at decision time.
type Actor struct {
	ID               string
	HeadOfDepartment bool
}

// Transition is the single change a successful action makes. Slot is the
// stage the action belongs to; it is written only when Comment is non-empty.
type Transition struct {
	From    Status
	To      Status
	Slot    CommentSlot
	Comment string
}

// Writes reports the comment slot this transition actually populates.
func (t Transition) Writes() CommentSlot {
	if t.Comment == "" {
		return SlotNone
	}
	return t.Slot
}

// Apply returns app as it looks after the transition.
func (t Transition) Apply(app Application) Application {
	app.Status = t.To
	switch t.Writes() {
	case SlotActing:
		app.Comments.Acting = t.Comment
	case SlotRecommender:
		app.Comments.Recommender = t.Comment
	case SlotApprover:
		app.Comments.Approver = t.Comment
	}
	return app
}

// Decide evaluates cmd against the transition table. A status that does not
// admit the action is reported before the actor is checked.
func Decide(app Application, actor Actor, cmd Command) (Transition, error) {
	if cmd == nil {
		return Transition{}, invalidTransition("missing action")
	}
	t := Transition{From: app.Status, Comment: cmd.comment()}

	switch cmd.(type) {
	case AcceptActing, RejectActing:
		if app.Status != StatusPendingActing {
			return Transition{}, wrongStage(app, cmd)
		}
		if actor.ID != app.ActingOfficerID {
			return Transition{}, unauthorized("only the acting officer can respond to this acting request")
		}
		t.To, t.Slot = StatusPending, SlotActing
		if _, ok := cmd.(RejectActing); ok {
			t.To = StatusActingRejected
		}

	case Recommend:
		if app.Status != StatusPending {
			return Transition{}, wrongStage(app, cmd)
		}
		if actor.ID != app.RecommenderID {
			return Transition{}, unauthorized("only the recommending officer can recommend this application")
		}
		t.To, t.Slot = StatusRecommended, SlotRecommender

	case Approve:
		if app.Status != StatusRecommended {
			return Transition{}, wrongStage(app, cmd)
		}
		if !approverOrHead(app, actor) {
			return Transition{}, unauthorized("only the approving officer or Head of Department can approve this application")
		}
		t.To, t.Slot = StatusApproved, SlotApprover

	case Reject:
		switch app.Status {
		case StatusPending:
			if actor.ID != app.RecommenderID {
				return Transition{}, unauthorized("only the recommending officer can reject this application at its current stage")
			}
			t.To, t.Slot = StatusRejected, SlotRecommender
		case StatusRecommended:
			if !approverOrHead(app, actor) {
				return Transition{}, unauthorized("only the approving officer or Head of Department can reject this application at its current stage")
			}
			t.To, t.Slot = StatusRejected, SlotApprover
		default:
			return Transition{}, wrongStage(app, cmd)
		}

	default:
		return Transition{}, invalidTransition("unsupported action %q", cmd.Name())
	}
	return t, nil
}

// DecideCancel lets the requester withdraw an application that has not
// reached a terminal status. No comment slot is written.
func DecideCancel(app Application, actorID string) (Transition, error) {
	if app.Status.Terminal() {
		return Transition{}, invalidTransition("application is already %s", app.Status)
	}
	if actorID != app.UserID {
		return Transition{}, unauthorized("only the requester can cancel this application")
	}
	return Transition{From: app.Status, To: StatusCancelled, Slot: SlotNone}, nil
}

func approverOrHead(app Application, actor Actor) bool {
	return actor.ID == app.ApproverID || actor.HeadOfDepartment
}

func wrongStage(app Application, cmd Command) *Error {
	return invalidTransition("cannot %s an application that is %s", lowerName(cmd), app.Status)
}

func lowerName(cmd Command) string {
	switch cmd.(type) {
	case AcceptActing:
		return "accept acting duties for"
	case RejectActing:
		return "reject acting duties for"
	case Recommend:
		return "recommend"
	case Approve:
		return "approve"
	case Reject:
		return "reject"
	}
	return cmd.Name()
}
