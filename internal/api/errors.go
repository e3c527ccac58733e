package api

import (
	"fmt"
	"net/http"
)

// APIError is a decoded error response from a devbot status server.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "" && e.ErrorCode > 0:
		return fmt.Sprintf("%s (%d): %s", e.Code, e.ErrorCode, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("status api returned %d %s", e.Status, http.StatusText(e.Status))
	}
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}
