package api

import (
	"encoding/json"
	"net/http"

	apperrors "slide-generator/internal/common/errors"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string      `json:"error"`
	StatusCode int         `json:"status_code"`
	Code       string      `json:"code"`
	Details    interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError classifies err and writes it with the matching status.
func RespondError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Classify(err)
	status := stdErr.HTTPStatus()

	resp := ErrorResponse{
		Error:      stdErr.Message,
		StatusCode: status,
		Code:       string(stdErr.Code),
	}
	// internal failures keep their details in the logs
	if stdErr.Code != apperrors.ErrCodeInternal {
		switch {
		case len(stdErr.Metadata) > 0:
			resp.Details = stdErr.Metadata
		case stdErr.Details != "":
			resp.Details = stdErr.Details
		}
	}

	RespondJSON(w, status, resp)
}
