package booking

import "testing"

var allStatuses = []Status{
	StatusPending, StatusAccepted, StatusRejected,
	StatusCancellationRequested, StatusCancelled,
	StatusConfirmed, StatusCompleted,
}

var allActions = []Action{
	ActionAccept, ActionReject, ActionRequestCancel,
	ActionConfirmCancel, ActionConfirm, ActionMarkCompleted,
}

func TestNextStatusTable(t *testing.T) {
	// The full legal transition set. Every (status, action) pair not
	// listed here must be rejected by nextStatus.
	legal := map[Status]map[Action]Status{
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

	for _, from := range allStatuses {
		for _, act := range allActions {
			want, wantOK := legal[from][act]
			got, ok := nextStatus(from, act)
			if ok != wantOK {
				t.Errorf("nextStatus(%s, %s) ok = %v, want %v", from, act, ok, wantOK)
				continue
			}
			if ok && got != want {
				t.Errorf("nextStatus(%s, %s) = %s, want %s", from, act, got, want)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusRejected:  true,
		StatusCancelled: true,
		StatusCompleted: true,
	}
	for _, s := range allStatuses {
		if got := s.Terminal(); got != terminal[s] {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, terminal[s])
		}
	}
}

func TestHoldsDate(t *testing.T) {
	holds := map[Status]bool{
		StatusPending:   true,
		StatusAccepted:  true,
		StatusConfirmed: true,
	}
	for _, s := range allStatuses {
		if got := s.HoldsDate(); got != holds[s] {
			t.Errorf("%s.HoldsDate() = %v, want %v", s, got, holds[s])
		}
	}
	// A cancellation in flight no longer blocks the date.
	if StatusCancellationRequested.HoldsDate() {
		t.Error("cancellation_requested must not hold its date")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, ok := ParseStatus(string(s))
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, ok)
		}
	}
	for _, bad := range []string{"", "PENDING", "approved", "cancel"} {
		if _, ok := ParseStatus(bad); ok {
			t.Errorf("ParseStatus(%q) accepted, want rejection", bad)
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range allActions {
		got, ok := ParseAction(string(a))
		if !ok || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, ok)
		}
	}
	for _, bad := range []string{"", "ACCEPT", "approve", "cancel"} {
		if _, ok := ParseAction(bad); ok {
			t.Errorf("ParseAction(%q) accepted, want rejection", bad)
		}
	}
}

func TestOwnerOnly(t *testing.T) {
	for _, a := range allActions {
		want := a != ActionRequestCancel
		if got := ownerOnly(a); got != want {
			t.Errorf("ownerOnly(%s) = %v, want %v", a, got, want)
		}
	}
}
