package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
	"devmatch/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	decisions []string
	reviews   []string
	logouts   []string
}

func (s *stubBackend) Authenticate(_ context.Context, token string) (string, error) {
	if token == "good" {
		return "alice", nil
	}
	return "", apperrors.ErrSessionExpired
}

func (s *stubBackend) Login(_ context.Context, email, password string) (*models.LoginResponse, error) {
	if email == "alice@example.com" && password == "pw" {
		return &models.LoginResponse{Token: "good", User: models.Identity{ID: "alice"}}, nil
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (s *stubBackend) Logout(_ context.Context, token string) error {
	s.logouts = append(s.logouts, token)
	return nil
}

func (s *stubBackend) AddUserProfile(_ context.Context, in services.SignupInput) (*models.User, error) {
	return &models.User{UserID: "new", FirstName: in.FirstName}, nil
}

func (s *stubBackend) GetIdentity(_ context.Context, userID string) (models.Identity, error) {
	return models.Identity{ID: userID, FirstName: "Alice"}, nil
}

func (s *stubBackend) Identity(_ context.Context, u models.User) models.Identity {
	return u.Identity()
}

func (s *stubBackend) GetFeed(_ context.Context, userID string, limit int) ([]models.Identity, error) {
	return []models.Identity{{ID: "x"}, {ID: "y"}}[:min(limit, 2)], nil
}

func (s *stubBackend) SendDecision(_ context.Context, from, to string, outcome models.Outcome) (*models.Request, error) {
	if !outcome.Valid() {
		return nil, apperrors.ErrInvalidOutcome
	}
	s.decisions = append(s.decisions, from+">"+to+":"+string(outcome))
	return &models.Request{ID: "r9", From: models.Identity{ID: from}, ToUserID: to, Status: models.StatusForOutcome(outcome)}, nil
}

func (s *stubBackend) PendingInbox(_ context.Context, userID string) ([]models.Request, error) {
	return []models.Request{{ID: "r1", From: models.Identity{ID: "bob"}, ToUserID: userID, Status: models.StatusPending}}, nil
}

func (s *stubBackend) Review(_ context.Context, self, requestID string, decision models.Decision) (*models.Request, error) {
	if requestID == "done" {
		return nil, apperrors.ErrRequestAlreadyResolved
	}
	s.reviews = append(s.reviews, self+":"+requestID+":"+string(decision))
	return &models.Request{ID: requestID, Status: decision}, nil
}

func (s *stubBackend) Connections(_ context.Context, userID string) ([]models.Identity, error) {
	return []models.Identity{{ID: "bob"}}, nil
}

func (s *stubBackend) GetConversation(_ context.Context, self, target string) (*models.Conversation, error) {
	if target == "stranger" {
		return nil, apperrors.ErrNotConnected
	}
	return &models.Conversation{
		Messages:     []models.Message{{ID: "m1", FromUserID: target, ToUserID: self, Body: "hi"}},
		Participants: models.Participants{Self: models.Identity{ID: self}, Target: models.Identity{ID: target}},
	}, nil
}

func (s *stubBackend) GenerateUploadURL(_ context.Context, name, typ string) (string, string, error) {
	return "https://upload/" + name, "profile-pics/" + name, nil
}

func (s *stubBackend) GenerateReadURL(_ context.Context, key string) (string, error) {
	return "https://read/" + key, nil
}

func newTestRouter(b *stubBackend) *mux.Router {
	var log logger.Logger
	r := mux.NewRouter()
	RegisterRoutes(r)
	RegisterUserProfileRoutes(r, b, b, b, log)
	RegisterMatchRoutes(r, b, b, b, log)
	RegisterChatRoutes(r, b, b, log)
	RegisterS3Routes(r, b, b, log)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, models.RawEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env models.RawEnvelope
	if rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newTestRouter(&stubBackend{})
	paths := []struct{ method, path string }{
		{"GET", "/user/feed"},
		{"GET", "/user/requests/pending"},
		{"GET", "/user/connections"},
		{"POST", "/request/send/interested/bob"},
		{"POST", "/request/review/accepted/r1"},
		{"GET", "/chat/bob"},
		{"GET", "/profile/view"},
		{"POST", "/logout"},
	}
	for _, p := range paths {
		rec, _ := do(t, h, p.method, p.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p.path)

		rec, _ = do(t, h, p.method, p.path, "stale", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(&stubBackend{})

	rec, _ := do(t, h, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec, env := do(t, h, "POST", "/login", "", `{"emailId":"alice@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "good", login.Token)

	rec, _ = do(t, h, "POST", "/login", "", `{"emailId":"alice@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, "POST", "/signup", "", `{"emailId":"n@example.com","password":"pw","firstName":"Nia"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMatchRoutes(t *testing.T) {
	b := &stubBackend{}
	h := newTestRouter(b)

	rec, env := do(t, h, "GET", "/user/feed?limit=1", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []models.Identity
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	assert.Len(t, feed, 1)

	rec, _ = do(t, h, "POST", "/request/send/ignored/bob", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice>bob:ignored"}, b.decisions)

	rec, _ = do(t, h, "POST", "/request/send/superlike/bob", "good", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, "GET", "/user/requests/pending", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox []models.Request
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "bob", inbox[0].From.ID)

	rec, _ = do(t, h, "POST", "/request/review/accepted/r1", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice:r1:accepted"}, b.reviews)

	rec, _ = do(t, h, "POST", "/request/review/accepted/done", "good", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.CodeFailedPrecondition), body.Code)
}

func TestChatAndProfileRoutes(t *testing.T) {
	b := &stubBackend{}
	h := newTestRouter(b)

	rec, env := do(t, h, "GET", "/chat/bob", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var conv models.Conversation
	require.NoError(t, json.Unmarshal(env.Data, &conv))
	assert.Equal(t, "alice", conv.Participants.Self.ID)
	assert.Equal(t, "bob", conv.Participants.Target.ID)
	require.Len(t, conv.Messages, 1)

	rec, _ = do(t, h, "GET", "/chat/stranger", "good", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = do(t, h, "GET", "/profile/view", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Identity
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.ID)

	rec, _ = do(t, h, "POST", "/logout", "good", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"good"}, b.logouts)

	rec, _ = do(t, h, "POST", "/generate-presigned-url", "", `{"fileName":"me.png","fileType":"image/png"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, "POST", "/generate-presigned-url", "", `{"fileName":"me.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
