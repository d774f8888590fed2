package models

// RequestRecord is a directed relationship record as stored in DynamoDB.
type RequestRecord struct {
	RequestID   string        `dynamodbav:"requestId" json:"requestId"`     // ✅ Partition Key
	FromUserID  string        `dynamodbav:"fromUserId" json:"fromUserId"`   // ✅ Who decided on the candidate
	ToUserID    string        `dynamodbav:"toUserId" json:"toUserId"`       // ✅ The candidate
	Status      RequestStatus `dynamodbav:"status" json:"status"`           // ✅ pending, accepted, rejected, ignored
	CreatedAt   string        `dynamodbav:"createdAt" json:"createdAt"`     // ✅ Timestamp of creation
	LastUpdated string        `dynamodbav:"lastUpdated" json:"lastUpdated"` // ✅ Updated when status changes
}

// Request is the API shape of a request, with the sender's identity
// embedded for inbox rendering.
type Request struct {
	ID        string        `json:"id"`
	From      Identity      `json:"fromUser"`
	ToUserID  string        `json:"toUserId"`
	Status    RequestStatus `json:"status"`
	CreatedAt string        `json:"createdAt,omitempty"`
}

// OtherParty returns the id on the opposite side of the record from userID.
func (r RequestRecord) OtherParty(userID string) string {
	if r.FromUserID == userID {
		return r.ToUserID
	}
	return r.FromUserID
}

// ✅ Define table name
const RequestsTable = "Requests"

// ✅ GSI for the recipient's inbox (PK: toUserId, SK: status)
const ToUserStatusIndex = "toUserId-status-index"

// ✅ GSI for everything a user has decided on (PK: fromUserId)
const FromUserIndex = "fromUserId-index"
