package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a decoded error envelope from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Detail  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the server, meaning the
// caller needs to re-authenticate.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
