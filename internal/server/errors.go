// Package server provides the HTTP API for batch report generation.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrRunNotFound indicates the batch run is unknown to this server
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("batch run not found: %s", e.RunID)
}

// ErrArtifactNotFound indicates no artifact with the digest exists in the run
type ErrArtifactNotFound struct {
	Digest string
}

func (e *ErrArtifactNotFound) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Digest)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrRunNotFound, *ErrArtifactNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
