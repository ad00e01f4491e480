// Package apierr maps domain errors onto the HTTP wire contract shared by
// every handler: stable error codes plus status categories.
package apierr

import (
	"errors"
	"net/http"

	"github.com/imagechat/backend/internal/service/conversation"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSessionExpired  = "SESSION_EXPIRED"
	CodeVisionAPI       = "VISION_API_ERROR"
	CodeNLPAPI          = "NLP_API_ERROR"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Classify resolves a domain error to its HTTP status and wire code.
// Unanticipated errors fall through to a generic internal fault.
func Classify(err error) (status int, code string) {
	switch {
	case errors.Is(err, conversation.ErrEmptyQuestion):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, conversation.ErrSessionNotFound):
		return http.StatusNotFound, CodeSessionNotFound
	case errors.Is(err, conversation.ErrSessionExhausted):
		return http.StatusForbidden, CodeSessionExpired
	case errors.Is(err, conversation.ErrDescriptionFailed):
		return http.StatusServiceUnavailable, CodeVisionAPI
	case errors.Is(err, conversation.ErrAnswerFailed):
		return http.StatusServiceUnavailable, CodeNLPAPI
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
