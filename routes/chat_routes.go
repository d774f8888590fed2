package routes

import (
	"devmatch/controllers"
	"devmatch/middleware"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up the conversation history route
func RegisterChatRoutes(r *mux.Router, auth middleware.Authenticator, chat controllers.ConversationLoader, log logger.Logger) {
	controller := controllers.NewChatController(chat, log)

	authed := protected(r, auth)
	authed.HandleFunc("/chat/{targetUserId}", controller.HandleGetConversation).Methods("GET")
}
