package routes

import (
	"devmatch/controllers"
	"devmatch/middleware"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up signup, login, logout and profile view
func RegisterUserProfileRoutes(r *mux.Router, auth middleware.Authenticator, sessions controllers.SessionManager, profiles controllers.ProfileManager, log logger.Logger) {
	controller := controllers.NewUserProfileController(sessions, profiles, log)

	r.HandleFunc("/signup", controller.Signup).Methods("POST")
	r.HandleFunc("/login", controller.Login).Methods("POST")

	authed := protected(r, auth)
	authed.HandleFunc("/logout", controller.Logout).Methods("POST")
	authed.HandleFunc("/profile/view", controller.ViewProfile).Methods("GET")
}
