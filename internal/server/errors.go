package server

import (
	"errors"
	"net/http"

	"github.com/jordan/curriculum-builder/internal/job"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var active *job.ActiveJobError
	switch {
	case errors.As(err, &active):
		return http.StatusConflict
	case errors.Is(err, job.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
