package models

// Session maps a bearer token to a user. ExpiresAt doubles as the table's
// TTL attribute.
type Session struct {
	Token     string `dynamodbav:"token" json:"token"`         // ✅ Partition Key
	UserID    string `dynamodbav:"userId" json:"userId"`       // Owner of the session
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"` // Timestamp of login
	ExpiresAt int64  `dynamodbav:"expiresAt" json:"expiresAt"` // Unix seconds
}

// SessionsTable is the DynamoDB table name for login sessions
const SessionsTable = "Sessions"

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

// LoginResponse is the data of a successful POST /login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}
