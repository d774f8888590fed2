package models

import "strings"

// User is the stored user record. Only Identity() leaves the server.
type User struct {
	UserID       string   `dynamodbav:"userId" json:"userId"`                   // ✅ Partition Key
	EmailID      string   `dynamodbav:"emailId" json:"emailId"`                 // Indexed via GSI
	PasswordHash string   `dynamodbav:"passwordHash" json:"-"`                  // bcrypt hash
	FirstName    string   `dynamodbav:"firstName" json:"firstName"`             // Given name
	LastName     string   `dynamodbav:"lastName,omitempty" json:"lastName"`     // Family name
	PhotoKey     string   `dynamodbav:"photoKey,omitempty" json:"photoKey"`     // S3 key or absolute URL
	About        string   `dynamodbav:"about,omitempty" json:"about"`           // Free-text bio
	Age          int      `dynamodbav:"age,omitempty" json:"age"`               // Age in years
	Gender       string   `dynamodbav:"gender,omitempty" json:"gender"`         // Gender
	Skills       []string `dynamodbav:"skills,omitempty" json:"skills"`         // Skill tags
	CreatedAt    string   `dynamodbav:"createdAt,omitempty" json:"createdAt"`   // RFC3339
}

// Identity is the display projection of a user: stable id plus the
// attributes used for rendering cards, inbox rows and chat headers.
type Identity struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName,omitempty"`
	PhotoURL  string   `json:"photoUrl,omitempty"`
	About     string   `json:"about,omitempty"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

// Identity projects the record. PhotoURL is left as the stored key; the
// profile service swaps it for a readable URL.
func (u User) Identity() Identity {
	return Identity{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		PhotoURL:  u.PhotoKey,
		About:     u.About,
		Age:       u.Age,
		Gender:    u.Gender,
		Skills:    u.Skills,
	}
}

func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.ID
	}
	return name
}

// UserProfilesTable is the DynamoDB table name for users
const UserProfilesTable = "Users"

// EmailIndex is the GSI used by login (PK: emailId)
const EmailIndex = "emailId-index"
