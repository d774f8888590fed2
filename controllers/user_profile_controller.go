package controllers

import (
	"context"
	"net/http"

	"devmatch/helpers"
	"devmatch/middleware"
	"devmatch/models"
	"devmatch/pkg/logger"
	"devmatch/services"
)

// SessionManager is what the auth endpoints need from the session service.
type SessionManager interface {
	Login(ctx context.Context, emailID, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

// ProfileManager is what the profile endpoints need from the profile service.
type ProfileManager interface {
	AddUserProfile(ctx context.Context, in services.SignupInput) (*models.User, error)
	GetIdentity(ctx context.Context, userID string) (models.Identity, error)
	Identity(ctx context.Context, user models.User) models.Identity
}

// UserProfileController handles signup, login, logout and profile view.
type UserProfileController struct {
	Sessions SessionManager
	Profiles ProfileManager
	Log      logger.Logger
}

func NewUserProfileController(sessions SessionManager, profiles ProfileManager, log logger.Logger) *UserProfileController {
	return &UserProfileController{Sessions: sessions, Profiles: profiles, Log: log}
}

// Signup creates an account and returns its identity.
func (c *UserProfileController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.WriteError(w, err)
		return
	}

	user, err := c.Profiles.AddUserProfile(r.Context(), in)
	if err != nil {
		c.Log.Warn("❌ Signup failed", "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusCreated, "Account created successfully", c.Profiles.Identity(r.Context(), *user))
}

// Login exchanges credentials for a session token.
func (c *UserProfileController) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.WriteError(w, err)
		return
	}

	resp, err := c.Sessions.Login(r.Context(), in.EmailID, in.Password)
	if err != nil {
		c.Log.Info("🔒 Login rejected", "emailId", in.EmailID, "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Logged in successfully", resp)
}

// Logout ends the caller's session.
func (c *UserProfileController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Sessions.Logout(r.Context(), middleware.Token(r.Context())); err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Logged out successfully", nil)
}

// ViewProfile returns the caller's own identity.
func (c *UserProfileController) ViewProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := c.Profiles.GetIdentity(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Profile fetched successfully", identity)
}
