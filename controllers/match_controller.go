package controllers

import (
	"context"
	"net/http"
	"strconv"

	"devmatch/helpers"
	"devmatch/middleware"
	"devmatch/models"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// FeedProvider serves candidate batches.
type FeedProvider interface {
	GetFeed(ctx context.Context, userID string, limit int) ([]models.Identity, error)
}

// RequestManager covers the request lifecycle endpoints.
type RequestManager interface {
	SendDecision(ctx context.Context, fromUserID, toUserID string, outcome models.Outcome) (*models.Request, error)
	PendingInbox(ctx context.Context, userID string) ([]models.Request, error)
	Review(ctx context.Context, selfID, requestID string, decision models.Decision) (*models.Request, error)
	Connections(ctx context.Context, userID string) ([]models.Identity, error)
}

// MatchController serves the feed, decisions, the pending inbox, reviews
// and connections.
type MatchController struct {
	Feed     FeedProvider
	Requests RequestManager
	Log      logger.Logger
}

func NewMatchController(feed FeedProvider, requests RequestManager, log logger.Logger) *MatchController {
	return &MatchController{Feed: feed, Requests: requests, Log: log}
}

// GetFeed handles GET /user/feed?limit=N
func (c *MatchController) GetFeed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	feed, err := c.Feed.GetFeed(r.Context(), middleware.UserID(r.Context()), limit)
	if err != nil {
		c.Log.Error("❌ Error fetching feed", "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Feed fetched successfully", feed)
}

// SendRequest handles POST /request/send/{status}/{toUserId}
func (c *MatchController) SendRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	outcome := models.Outcome(vars["status"])

	req, err := c.Requests.SendDecision(r.Context(), middleware.UserID(r.Context()), vars["toUserId"], outcome)
	if err != nil {
		c.Log.Warn("❌ Decision rejected", "to", vars["toUserId"], "status", outcome, "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Decision recorded: "+string(outcome), req)
}

// GetPendingRequests handles GET /user/requests/pending
func (c *MatchController) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	inbox, err := c.Requests.PendingInbox(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		c.Log.Error("❌ Error fetching pending requests", "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Pending requests fetched successfully", inbox)
}

// ReviewRequest handles POST /request/review/{status}/{requestId}
func (c *MatchController) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	decision := models.Decision(vars["status"])

	req, err := c.Requests.Review(r.Context(), middleware.UserID(r.Context()), vars["requestId"], decision)
	if err != nil {
		c.Log.Warn("❌ Review rejected", "requestId", vars["requestId"], "status", decision, "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Request "+string(decision), req)
}

// GetConnections handles GET /user/connections
func (c *MatchController) GetConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := c.Requests.Connections(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		c.Log.Error("❌ Error fetching connections", "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Connections fetched successfully", conns)
}
