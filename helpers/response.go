package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("❌ Failed to encode response", "err", err)
	}
}

// WriteData wraps data in the standard envelope.
func WriteData(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSONResponse(w, status, models.Envelope{Message: message, Data: data})
}

// WriteError maps err onto an HTTP status and error body. Errors that are
// not *AppError are reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		slog.Error("❌ Unhandled error", "err", err)
		WriteJSONResponse(w, http.StatusInternalServerError, models.ErrorBody{
			Code:    string(apperrors.CodeInternal),
			Message: "internal server error",
		})
		return
	}
	WriteJSONResponse(w, appErr.Code.HTTPStatus(), models.ErrorBody{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidArg("invalid request payload")
	}
	return nil
}
