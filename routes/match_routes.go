package routes

import (
	"devmatch/controllers"
	"devmatch/middleware"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up the feed, decision, inbox and connection routes
func RegisterMatchRoutes(r *mux.Router, auth middleware.Authenticator, feed controllers.FeedProvider, requests controllers.RequestManager, log logger.Logger) {
	controller := controllers.NewMatchController(feed, requests, log)

	authed := protected(r, auth)
	authed.HandleFunc("/user/feed", controller.GetFeed).Methods("GET")
	authed.HandleFunc("/user/requests/pending", controller.GetPendingRequests).Methods("GET")
	authed.HandleFunc("/user/connections", controller.GetConnections).Methods("GET")
	authed.HandleFunc("/request/send/{status}/{toUserId}", controller.SendRequest).Methods("POST")
	authed.HandleFunc("/request/review/{status}/{requestId}", controller.ReviewRequest).Methods("POST")
}
