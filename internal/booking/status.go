package booking

// Status is the closed set of reservation lifecycle states. Values
// outside this set are rejected at the boundary; the database stores the
// string form.
type Status string

const (
	StatusPending               Status = "pending"
	StatusAccepted              Status = "accepted"
	StatusRejected              Status = "rejected"
	StatusCancellationRequested Status = "cancellation_requested"
	StatusCancelled             Status = "cancelled"
	StatusConfirmed             Status = "confirmed"
	StatusCompleted             Status = "completed"
)

// Action is the closed set of transition verbs an actor may apply to an
// existing reservation. Creating a reservation is a separate operation
// and not part of this set.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionRequestCancel Action = "request_cancel"
	ActionConfirmCancel Action = "confirm_cancel"
	ActionConfirm       Action = "confirm"
	ActionMarkCompleted Action = "mark_completed"
)

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected,
		StatusCancellationRequested, StatusCancelled,
		StatusConfirmed, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// ParseAction validates a raw action string against the closed set.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionAccept, ActionReject, ActionRequestCancel,
		ActionConfirmCancel, ActionConfirm, ActionMarkCompleted:
		return Action(s), true
	}
	return "", false
}

// Terminal reports whether no further transitions are accepted from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

// HoldsDate reports whether a reservation in this status blocks its
// event date against new requests. The storage-level uniqueness
// constraint covers exactly these statuses.
func (s Status) HoldsDate() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusConfirmed
}

// transitions is the legal part of the state machine. Any (status,
// action) pair absent here fails with ErrInvalidTransition; terminal
// states are rejected before the lookup with ErrTerminalState.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionAccept:        StatusAccepted,
		ActionReject:        StatusRejected,
		ActionRequestCancel: StatusCancellationRequested,
	},
	StatusAccepted: {
		ActionConfirm:       StatusConfirmed,
		ActionRequestCancel: StatusCancellationRequested,
		ActionMarkCompleted: StatusCompleted,
	},
	StatusConfirmed: {
		ActionRequestCancel: StatusCancellationRequested,
		ActionMarkCompleted: StatusCompleted,
	},
	StatusCancellationRequested: {
		ActionConfirmCancel: StatusCancelled,
	},
}

// nextStatus resolves the target state for (from, action).
func nextStatus(from Status, a Action) (Status, bool) {
	to, ok := transitions[from][a]
	return to, ok
}

// ownerOnly reports whether the action may only be taken by the venue
// owner. request_cancel is the sole action open to the requester as well.
func ownerOnly(a Action) bool {
	return a != ActionRequestCancel
}
