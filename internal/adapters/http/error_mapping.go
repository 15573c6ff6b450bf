package httpadapter

import (
	"net/http"

	"github.com/kirillkom/legal-intel/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrInvalidFileType):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
