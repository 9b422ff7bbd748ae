package server

import (
	"net/http"

	cberrors "github.com/jonathan/careerbase/internal/errors"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch {
	case cberrors.IsValidation(err):
		return http.StatusBadRequest
	case cberrors.IsNotFound(err):
		return http.StatusNotFound
	case cberrors.IsRollback(err):
		return http.StatusConflict
	case cberrors.IsStore(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
