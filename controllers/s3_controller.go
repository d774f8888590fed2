package controllers

import (
	"context"
	"net/http"

	"devmatch/helpers"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
)

// URLPresigner issues presigned photo URLs.
type URLPresigner interface {
	GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error)
	GenerateReadURL(ctx context.Context, key string) (string, error)
}

type S3Controller struct {
	S3  URLPresigner
	Log logger.Logger
}

func NewS3Controller(s3 URLPresigner, log logger.Logger) *S3Controller {
	return &S3Controller{S3: s3, Log: log}
}

// GeneratePresignedURL generates a presigned URL for S3 uploads
func (c *S3Controller) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := helpers.DecodeJSON(r, &payload); err != nil {
		helpers.WriteError(w, err)
		return
	}
	if payload.FileName == "" || payload.FileType == "" {
		helpers.WriteError(w, apperrors.InvalidArg("fileName and fileType are required"))
		return
	}

	url, fileName, err := c.S3.GenerateUploadURL(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		c.Log.Error("❌ Error generating pre-signed URL", "err", err)
		helpers.WriteError(w, apperrors.Internal("failed to generate pre-signed URL"))
		return
	}
	helpers.WriteData(w, http.StatusOK, "Upload URL generated", map[string]string{"url": url, "fileName": fileName})
}

// GetPresignedReadURL generates a presigned URL for reading S3 objects
func (c *S3Controller) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := helpers.DecodeJSON(r, &payload); err != nil {
		helpers.WriteError(w, err)
		return
	}
	if payload.Key == "" {
		helpers.WriteError(w, apperrors.InvalidArg("key is required"))
		return
	}

	url, err := c.S3.GenerateReadURL(r.Context(), payload.Key)
	if err != nil {
		c.Log.Error("❌ Error generating read URL", "err", err)
		helpers.WriteError(w, apperrors.Internal("failed to generate read pre-signed URL"))
		return
	}
	helpers.WriteData(w, http.StatusOK, "Read URL generated", map[string]string{"url": url})
}
