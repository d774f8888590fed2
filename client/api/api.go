// Package api is the request/response side of the client transport.
package api

import (
	"context"

	"devmatch/models"
)

//go:generate mockgen -destination=../mocks/mock_api.go -package=mocks devmatch/client/api API

// API is the set of remote operations the client controllers consume.
// Every method returns an Unauthorized error when the session is no longer
// valid and a TransportFailure for any other unsuccessful call.
type API interface {
	FetchFeed(ctx context.Context, limit int) ([]models.Identity, error)
	SubmitDecision(ctx context.Context, candidateID string, outcome models.Outcome) error
	FetchPendingRequests(ctx context.Context) ([]models.Request, error)
	SubmitResolution(ctx context.Context, requestID string, decision models.Decision) error
	FetchConversation(ctx context.Context, targetID string) (*models.Conversation, error)
	FetchConnections(ctx context.Context) ([]models.Identity, error)
	ViewProfile(ctx context.Context) (models.Identity, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
}
