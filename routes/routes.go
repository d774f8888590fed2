package routes

import (
	"devmatch/controllers"
	"devmatch/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the unauthenticated service routes
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}

// protected returns a subrouter that requires a valid session.
func protected(r *mux.Router, auth middleware.Authenticator) *mux.Router {
	sub := r.NewRoute().Subrouter()
	sub.Use(middleware.RequireSession(auth))
	return sub
}
