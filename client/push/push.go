// Package push is the client side of the live channel: a single
// Socket.IO connection shared by the process, joined to at most one
// conversation scope at a time.
package push

import (
	"devmatch/models"
)

// Scope is one conversation's channel, seen from the local user.
type Scope struct {
	SelfID   string
	TargetID string
}

// Room is the server-side room name for the scope.
func (s Scope) Room() string {
	return models.ConversationID(s.SelfID, s.TargetID)
}

// Matches reports whether a message between from and to belongs to s.
func (s Scope) Matches(from, to string) bool {
	return (from == s.SelfID && to == s.TargetID) || (from == s.TargetID && to == s.SelfID)
}

// Event is one inbound push. Exactly one field is set.
type Event struct {
	Message   *models.PushMessage
	SendError *models.SendError
}

// Channel is what a conversation needs from the push connection.
type Channel interface {
	Join(scope Scope) error
	Leave(scope Scope) error
	Send(msg models.PushMessage) error
	// Subscribe registers fn for inbound events. fn runs on the channel's
	// reader goroutine and must not block.
	Subscribe(fn func(Event)) (unsubscribe func())
}
