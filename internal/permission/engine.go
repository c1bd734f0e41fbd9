// Package permission decides whether one user may message another.
package permission

import "github.com/dtroode/campuschat-server/internal/model"

// Evaluate returns the verdict for actor sending to peer.
//
// Rules apply in order and the first match wins. An actor acting as admin
// gets Open even when either side has blocked the other.
func Evaluate(actor, peer model.User, actingAsAdmin bool) model.Verdict {
	switch {
	case actingAsAdmin:
		return model.VerdictOpen
	case actor.HasBlocked(peer.ID):
		return model.VerdictBlockedByMe
	case peer.HasBlocked(actor.ID):
		return model.VerdictBlockedByPeer
	case !peer.AllowChat && !peer.Whitelists(actor.ID):
		return model.VerdictClosedByPeer
	default:
		return model.VerdictOpen
	}
}

// CanSend reports whether a message may be sent under v.
func CanSend(v model.Verdict) bool {
	return v.CanSend()
}
