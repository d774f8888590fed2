package controllers

import (
	"context"
	"net/http"

	"devmatch/helpers"
	"devmatch/middleware"
	"devmatch/models"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// ConversationLoader loads a conversation's history and participants.
type ConversationLoader interface {
	GetConversation(ctx context.Context, selfID, targetID string) (*models.Conversation, error)
}

// ChatController struct
type ChatController struct {
	Chat ConversationLoader
	Log  logger.Logger
}

// NewChatController initializes the chat controller
func NewChatController(chat ConversationLoader, log logger.Logger) *ChatController {
	return &ChatController{Chat: chat, Log: log}
}

// HandleGetConversation handles GET /chat/{targetUserId}
func (c *ChatController) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["targetUserId"]

	conv, err := c.Chat.GetConversation(r.Context(), middleware.UserID(r.Context()), target)
	if err != nil {
		c.Log.Warn("❌ Error fetching conversation", "target", target, "err", err)
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteData(w, http.StatusOK, "Conversation fetched successfully", conv)
}
