package routes

import (
	"devmatch/controllers"
	"devmatch/middleware"
	"devmatch/pkg/logger"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for S3-related operations
func RegisterS3Routes(r *mux.Router, auth middleware.Authenticator, s3 controllers.URLPresigner, log logger.Logger) {
	controller := controllers.NewS3Controller(s3, log)

	// Signup uploads a photo before an account exists.
	r.HandleFunc("/generate-presigned-url", controller.GeneratePresignedURL).Methods("POST")

	authed := protected(r, auth)
	authed.HandleFunc("/get-presigned-read-url", controller.GetPresignedReadURL).Methods("POST")
}
