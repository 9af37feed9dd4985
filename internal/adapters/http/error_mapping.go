package httpadapter

import (
	"net/http"

	"github.com/raglab/docqa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrIndexConfig),
		domain.IsKind(err, domain.ErrCapacity),
		domain.IsKind(err, domain.ErrEngine):
		// Engine rejections surface verbatim so callers can act on them.
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
