package models

import (
	"sort"
	"strings"
	"time"
)

// MessageRecord is a chat message as stored in DynamoDB.
type MessageRecord struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // ✅ Partition Key
	SortKey        string `dynamodbav:"sortKey" json:"sortKey"`               // ✅ Sort Key: createdAt#messageId
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	FromUserID     string `dynamodbav:"fromUserId" json:"fromUserId"`
	ToUserID       string `dynamodbav:"toUserId" json:"toUserId"`
	Body           string `dynamodbav:"body" json:"body"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"` // TimestampLayout, UTC
}

// Message is one transcript entry.
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r MessageRecord) Message() Message {
	created, _ := time.Parse(TimestampLayout, r.CreatedAt)
	return Message{
		ID:         r.MessageID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Body:       r.Body,
		CreatedAt:  created,
	}
}

// Participants are the two identities of a conversation, from the
// requesting user's point of view.
type Participants struct {
	Self   Identity `json:"self"`
	Target Identity `json:"target"`
}

// Conversation is the history payload: ordered messages plus participants.
type Conversation struct {
	Messages     []Message    `json:"messages"`
	Participants Participants `json:"participants"`
}

// ConversationID is the order-independent key for a pair of users. It is
// also the push channel room name.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// TimestampLayout is RFC3339 with a fixed-width fraction, so stored
// timestamps sort lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MessageSortKey orders messages by creation time, breaking ties by id.
func MessageSortKey(createdAt time.Time, messageID string) string {
	return FormatTimestamp(createdAt) + "#" + messageID
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
