package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
)

const defaultTimeout = 15 * time.Second

// Client talks to the REST API with a bearer session token.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     logger.Logger

	mu    sync.RWMutex
	token string
}

var _ API = (*Client)(nil)

func NewClient(baseURL string, log logger.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: defaultTimeout},
		Log:     log,
	}
}

// SetToken replaces the session token sent with every call.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) FetchFeed(ctx context.Context, limit int) ([]models.Identity, error) {
	path := "/user/feed"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var feed []models.Identity
	if err := c.do(ctx, http.MethodGet, path, nil, &feed); err != nil {
		return nil, err
	}
	return feed, nil
}

func (c *Client) SubmitDecision(ctx context.Context, candidateID string, outcome models.Outcome) error {
	path := fmt.Sprintf("/request/send/%s/%s", url.PathEscape(string(outcome)), url.PathEscape(candidateID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) FetchPendingRequests(ctx context.Context) ([]models.Request, error) {
	var inbox []models.Request
	if err := c.do(ctx, http.MethodGet, "/user/requests/pending", nil, &inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

func (c *Client) SubmitResolution(ctx context.Context, requestID string, decision models.Decision) error {
	path := fmt.Sprintf("/request/review/%s/%s", url.PathEscape(string(decision)), url.PathEscape(requestID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) FetchConversation(ctx context.Context, targetID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(targetID), nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) FetchConnections(ctx context.Context) ([]models.Identity, error) {
	var conns []models.Identity
	if err := c.do(ctx, http.MethodGet, "/user/connections", nil, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

func (c *Client) ViewProfile(ctx context.Context) (models.Identity, error) {
	var me models.Identity
	err := c.do(ctx, http.MethodGet, "/profile/view", nil, &me)
	return me, err
}

// Login authenticates and, on success, keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{EmailID: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Logout ends the session server-side and forgets the token locally,
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.TransportFailure("encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return apperrors.TransportFailure("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Log.Warn("❌ API call failed", "method", method, "path", path, "err", err)
		return apperrors.TransportFailure(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.TransportFailure("read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	var env models.RawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperrors.TransportFailure("decode response envelope", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.TransportFailure("decode response data", err)
	}
	return nil
}

// statusError classifies a non-2xx answer. 401 is Unauthorized; anything
// else is a TransportFailure carrying the server's code and message.
func statusError(method, path string, status int, raw []byte) error {
	var body models.ErrorBody
	_ = json.Unmarshal(raw, &body)
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}

	if status == http.StatusUnauthorized {
		return apperrors.Unauthorized(body.Message)
	}
	code := apperrors.Code(body.Code)
	if code == "" {
		code = apperrors.CodeUnknown
	}
	server := &apperrors.AppError{Code: code, Message: body.Message}
	return apperrors.TransportFailure(fmt.Sprintf("%s %s: %d", method, path, status), server)
}

// ServerCode returns the code the server answered with, if err carries one.
func ServerCode(err error) apperrors.Code {
	for err != nil {
		appErr, ok := err.(*apperrors.AppError)
		if !ok {
			return apperrors.CodeUnknown
		}
		if appErr.Code != apperrors.CodeTransportFailure {
			return appErr.Code
		}
		err = appErr.Cause
	}
	return apperrors.CodeUnknown
}
