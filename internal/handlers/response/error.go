package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/agfdbk.net/internal/static/errs"
)

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// StatusOf maps a service error to the HTTP status reported for it
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnknownFeedbackCategory),
		errors.Is(err, errs.ErrInvalidReceipt):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotVisible):
		return http.StatusForbidden
	case errors.Is(err, errs.InvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrOutputUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError reports err with the status StatusOf picks. Internal
// errors are not echoed to the caller.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	WriteError(w, ErrorMessage{Message: message, StatusCode: status})
}
