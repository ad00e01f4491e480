package conversation

import (
	"errors"

	"github.com/imagechat/backend/internal/service/session"
)

var (
	// ErrEmptyQuestion rejects questions that are empty after trimming.
	ErrEmptyQuestion = errors.New("question must not be empty")
	// ErrDescriptionFailed wraps a vision provider failure during ingest.
	ErrDescriptionFailed = errors.New("failed to describe image")
	// ErrAnswerFailed wraps an answer provider failure; the failed question
	// does not consume a quota slot.
	ErrAnswerFailed = errors.New("failed to generate answer")

	// ErrSessionNotFound and ErrSessionExhausted are the store's sentinels,
	// re-exported so transport code only imports this package.
	ErrSessionNotFound  = session.ErrNotFound
	ErrSessionExhausted = session.ErrQuotaExhausted
)
