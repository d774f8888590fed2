package models

import "time"

// RoomPayload is the body of join-room and leave-room.
type RoomPayload struct {
	CurrentUserID string `json:"currentUserId"`
	ToUserID      string `json:"toUserId"`
}

// PushMessage is the send-message payload in both directions. Clients
// send Message, CurrentUserID and ToUserID; the server adds ID and
// CreatedAt once the message is stored.
type PushMessage struct {
	ID            string     `json:"id,omitempty"`
	Message       string     `json:"message"`
	CurrentUserID string     `json:"currentUserId"`
	ToUserID      string     `json:"toUserId"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// PushMessageFrom builds the broadcast form of a stored message.
func PushMessageFrom(m Message) PushMessage {
	created := m.CreatedAt.UTC()
	return PushMessage{
		ID:            m.ID,
		Message:       m.Body,
		CurrentUserID: m.FromUserID,
		ToUserID:      m.ToUserID,
		CreatedAt:     &created,
	}
}

// ToMessage converts a received push event into a transcript message. A
// missing timestamp falls back to fallback.
func (p PushMessage) ToMessage(fallback time.Time) Message {
	created := fallback
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		created = *p.CreatedAt
	}
	return Message{
		ID:         p.ID,
		FromUserID: p.CurrentUserID,
		ToUserID:   p.ToUserID,
		Body:       p.Message,
		CreatedAt:  created,
	}
}

// SendError is emitted back to a sender whose message was refused.
type SendError struct {
	Message  string `json:"message"`
	ToUserID string `json:"toUserId"`
}
