package httpadapter

import (
	"net/http"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnknownStrategy),
		domain.IsKind(err, domain.ErrUnknownRuleSet):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
