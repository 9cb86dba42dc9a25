package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// NetworkErrorMessage is shown when the backend cannot be reached.
const NetworkErrorMessage = "Network error"

// TransportError reports that the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response or a payload whose status is not "success".
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: http %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.Code, e.Message)
}

// ValidationError reports input rejected before any request was sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// UserMessage maps err to display text. Transport failures read "Network
// error"; backend failures use the server message or fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return NetworkErrorMessage
	}
	var status *StatusError
	if errors.As(err, &status) && status.Message != "" {
		return status.Message
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// IsValidation reports whether err was raised before sending.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
	Error   string `json:"error"`
}

// decodeHTTPError builds a StatusError from a failed response body.
func decodeHTTPError(op string, status int, body []byte) error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		switch {
		case resp.Message != "":
			return &StatusError{Op: op, Code: status, Message: resp.Message}
		case resp.Error != "":
			return &StatusError{Op: op, Code: status, Message: resp.Error}
		case resp.Detail != nil:
			if detail, ok := resp.Detail.(string); ok {
				return &StatusError{Op: op, Code: status, Message: detail}
			}
		}
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &StatusError{Op: op, Code: status}
}
