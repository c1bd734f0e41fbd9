package model

// Verdict is the outcome of a chat permission evaluation.
type Verdict string

const (
	VerdictOpen          Verdict = "open"
	VerdictBlockedByMe   Verdict = "blocked_by_me"
	VerdictBlockedByPeer Verdict = "blocked_by_peer"
	VerdictClosedByPeer  Verdict = "closed_by_peer"
)

// CanSend reports whether a message may be sent under v.
func (v Verdict) CanSend() bool {
	return v == VerdictOpen
}

// Reason returns a human readable explanation of a denial.
func (v Verdict) Reason() string {
	switch v {
	case VerdictBlockedByMe:
		return "you have blocked this user"
	case VerdictBlockedByPeer:
		return "this user has blocked you"
	case VerdictClosedByPeer:
		return "this user does not accept messages"
	default:
		return ""
	}
}
