package nlp

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/imagechat/backend/internal/model/chat"
)

// ErrUnavailable signals an answer-generation provider failure. Callers may
// retry; no conversation state is consumed by a failed call.
var ErrUnavailable = errors.New("nlp provider unavailable")

// historyWindow bounds how many transcript entries are forwarded to the
// model, keeping prompt size flat regardless of conversation length.
const historyWindow = 6

// Service answers follow-up questions grounded in a previously generated
// image description.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the answer chain once so every question reuses it.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile answer chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// AnswerQuestion generates an answer for the question using the image
// description and at most the last three question/answer pairs of history.
func (s *Service) AnswerQuestion(ctx context.Context, question, description string, history []chat.Turn) (string, error) {
	resp, err := s.chain.Invoke(ctx, chainInput(question, description, history))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	log.Printf("[nlp] answer generated (%d chars)", len(resp.Content))
	return resp.Content, nil
}

// StreamAnswer is the streaming variant of AnswerQuestion; the caller owns
// the returned reader and must close it.
func (s *Service) StreamAnswer(ctx context.Context, question, description string, history []chat.Turn) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, chainInput(question, description, history))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return stream, nil
}

func chainInput(question, description string, history []chat.Turn) map[string]any {
	return map[string]any{
		"system":  answerSystemPrompt(description),
		"history": historyMessages(history),
		"query":   question,
	}
}

// historyMessages converts the most recent transcript entries into model
// messages, newest last.
func historyMessages(history []chat.Turn) []*schema.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	return messages
}
