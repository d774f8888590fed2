package models

// Outcome is the current user's decision on a feed candidate.
type Outcome string

// ✅ Feed decisions
const (
	OutcomeInterested Outcome = "interested"
	OutcomeIgnored    Outcome = "ignored"
)

func (o Outcome) Valid() bool {
	return o == OutcomeInterested || o == OutcomeIgnored
}

// RequestStatus is the lifecycle state of a request record.
type RequestStatus string

// ✅ Request statuses
const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"

	// StatusIgnored marks a stored "ignored" decision. It shares the
	// Requests table so the feed can exclude the pair, but it is never a
	// Request in the inbox sense.
	StatusIgnored RequestStatus = "ignored"
)

// Decision is the recipient's resolution of a pending request.
type Decision = RequestStatus

func ValidDecision(d Decision) bool {
	return d == StatusAccepted || d == StatusRejected
}

// StatusForOutcome maps a feed decision onto the stored record status.
func StatusForOutcome(o Outcome) RequestStatus {
	if o == OutcomeInterested {
		return StatusPending
	}
	return StatusIgnored
}

// ✅ Push channel event names
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventSendError   = "send-error"
)
