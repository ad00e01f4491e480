package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/imagechat/backend/internal/model/chat"
	"github.com/imagechat/backend/internal/service/session"
)

// Describer produces a textual description of an uploaded image.
type Describer interface {
	DescribeImage(ctx context.Context, image []byte) (string, error)
}

// Answerer generates answers grounded in an image description and bounded
// conversation history.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question, description string, history []chat.Turn) (string, error)
	StreamAnswer(ctx context.Context, question, description string, history []chat.Turn) (*schema.StreamReader[*schema.Message], error)
}

// Service orchestrates the per-question state machine: quota enforcement,
// context assembly, capability invocation and transcript bookkeeping. The
// session store is the only shared state; capability calls are issued without
// holding any lock and the result is committed atomically afterwards.
type Service struct {
	store     *session.Store
	describer Describer
	answerer  Answerer
}

// NewService wires the orchestrator to its store and capability providers.
func NewService(store *session.Store, describer Describer, answerer Answerer) *Service {
	return &Service{store: store, describer: describer, answerer: answerer}
}

// IngestResult is returned after a successful image ingest.
type IngestResult struct {
	SessionID          string `json:"sessionId"`
	DescriptionPreview string `json:"descriptionPreview"`
	RemainingQuestions int    `json:"remainingQuestions"`
}

// Ingest describes the image and, only on success, creates a session bound to
// that description.
func (s *Service) Ingest(ctx context.Context, image []byte) (IngestResult, error) {
	description, err := s.describer.DescribeImage(ctx, image)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrDescriptionFailed, err)
	}

	sess, err := s.store.Create(ctx, description)
	if err != nil {
		return IngestResult{}, err
	}

	log.Printf("[conversation] session created: %s", sess.ID)
	return IngestResult{
		SessionID:          sess.ID,
		DescriptionPreview: description,
		RemainingQuestions: chat.MaxQuestions,
	}, nil
}

// AskResult carries the answer plus the session's quota counters.
type AskResult struct {
	Answer             string `json:"answer"`
	QuestionsUsed      int    `json:"questionsUsed"`
	RemainingQuestions int    `json:"remainingQuestions"`
	SessionActive      bool   `json:"sessionActive"`
}

// Ask answers one follow-up question for the session. A question past the
// quota deletes the session and fails with ErrSessionExhausted; a provider
// failure leaves the session untouched.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (AskResult, error) {
	question, sess, err := s.prepare(ctx, sessionID, question)
	if err != nil {
		return AskResult{}, err
	}

	answer, err := s.answerer.AnswerQuestion(ctx, question, sess.ImageDescription, sess.History)
	if err != nil {
		return AskResult{}, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
	}

	return s.commit(ctx, sessionID, question, answer)
}

// AskStream answers one question while forwarding answer chunks to onChunk as
// they arrive. The exchange is committed only once the stream completes, with
// the same quota semantics as Ask.
func (s *Service) AskStream(ctx context.Context, sessionID, question string, onChunk func(chunk string)) (AskResult, error) {
	question, sess, err := s.prepare(ctx, sessionID, question)
	if err != nil {
		return AskResult{}, err
	}

	stream, err := s.answerer.StreamAnswer(ctx, question, sess.ImageDescription, sess.History)
	if err != nil {
		return AskResult{}, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
	}
	defer stream.Close()

	var answer strings.Builder
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return AskResult{}, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
		}
		if msg.Content == "" {
			continue
		}
		answer.WriteString(msg.Content)
		if onChunk != nil {
			onChunk(msg.Content)
		}
	}

	return s.commit(ctx, sessionID, question, answer.String())
}

// prepare validates the question and runs the quota pre-check. A session that
// already spent its quota is deleted here, on the request that trips over it.
func (s *Service) prepare(ctx context.Context, sessionID, question string) (string, chat.Session, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", chat.Session{}, ErrEmptyQuestion
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", chat.Session{}, err
	}

	if sess.Exhausted() {
		s.store.Delete(ctx, sessionID)
		log.Printf("[conversation] session %s exhausted, deleted", sessionID)
		return "", chat.Session{}, ErrSessionExhausted
	}

	log.Printf("[conversation] question %d/%d for session %s", sess.QuestionCount+1, chat.MaxQuestions, sessionID)
	return question, sess, nil
}

// commit atomically records the exchange. The store re-validates the quota
// under its lock, so concurrent asks on one session can never both land.
func (s *Service) commit(ctx context.Context, sessionID, question, answer string) (AskResult, error) {
	sess, err := s.store.AppendExchange(ctx, sessionID, question, answer)
	if err != nil {
		return AskResult{}, err
	}

	remaining := sess.Remaining()
	return AskResult{
		Answer:             answer,
		QuestionsUsed:      sess.QuestionCount,
		RemainingQuestions: remaining,
		SessionActive:      remaining > 0,
	}, nil
}

// SessionStatus is a read-only view of a session's quota state.
type SessionStatus struct {
	SessionID          string `json:"sessionId"`
	QuestionsUsed      int    `json:"questionsUsed"`
	RemainingQuestions int    `json:"remainingQuestions"`
	SessionActive      bool   `json:"sessionActive"`
	CreatedAt          string `json:"createdAt"`
}

// Status reports the quota counters for a live session.
func (s *Service) Status(ctx context.Context, sessionID string) (SessionStatus, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, err
	}

	remaining := sess.Remaining()
	return SessionStatus{
		SessionID:          sess.ID,
		QuestionsUsed:      sess.QuestionCount,
		RemainingQuestions: remaining,
		SessionActive:      remaining > 0,
		CreatedAt:          sess.CreatedAt.Format(time.RFC3339),
	}, nil
}
