package frontend

import (
	"encoding/json"
	"errors"
	"net/http"

	"ragdesk/internal/backend"
)

const statusSuccess = "success"

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// requestError is a problem with the browser's request itself.
type requestError struct {
	Status  int
	Message string
}

func (e *requestError) Error() string { return e.Message }

func badRequest(message string) error {
	return &requestError{Status: http.StatusBadRequest, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

// writeError maps err to a status code: request and validation problems are
// 400, backend and transport failures are 502.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeMessage(w, reqErr.Status, reqErr.Message)
	case backend.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, backend.UserMessage(err, fallback))
	default:
		writeMessage(w, http.StatusBadGateway, backend.UserMessage(err, fallback))
	}
}

func writeBusy(w http.ResponseWriter) {
	writeMessage(w, http.StatusConflict, "Request already in progress.")
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return badRequest("Invalid request body.")
	}
	return nil
}
