package nlp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/imagechat/backend/internal/model/chat"
)

func buildHistory(pairs int) []chat.Turn {
	history := make([]chat.Turn, 0, 2*pairs)
	for i := 1; i <= pairs; i++ {
		history = append(history,
			chat.Turn{Role: chat.RoleUser, Content: fmt.Sprintf("question %d", i)},
			chat.Turn{Role: chat.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}
	return history
}

func TestHistoryMessagesWindow(t *testing.T) {
	history := buildHistory(5) // 10 entries, above the window

	messages := historyMessages(history)
	if len(messages) != historyWindow {
		t.Fatalf("expected %d messages, got %d", historyWindow, len(messages))
	}

	// The window keeps the newest entries: pairs 3, 4 and 5.
	if messages[0].Content != "question 3" {
		t.Fatalf("unexpected window head: %q", messages[0].Content)
	}
	if messages[len(messages)-1].Content != "answer 5" {
		t.Fatalf("unexpected window tail: %q", messages[len(messages)-1].Content)
	}
}

func TestHistoryMessagesShortHistory(t *testing.T) {
	messages := historyMessages(buildHistory(2))
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}

	if messages := historyMessages(nil); len(messages) != 0 {
		t.Fatalf("expected no messages for empty history, got %d", len(messages))
	}
}

func TestHistoryMessagesRoleMapping(t *testing.T) {
	messages := historyMessages(buildHistory(1))

	if messages[0].Role != "user" {
		t.Fatalf("expected user role, got %q", messages[0].Role)
	}
	if messages[1].Role != "assistant" {
		t.Fatalf("expected assistant role, got %q", messages[1].Role)
	}
}

func TestChainInputCarriesDescription(t *testing.T) {
	input := chainInput("what color?", "a green and rusty bicycle", buildHistory(1))

	system, ok := input["system"].(string)
	if !ok {
		t.Fatal("system input must be a string")
	}
	if !strings.Contains(system, "a green and rusty bicycle") {
		t.Fatal("system prompt must embed the image description")
	}
	if input["query"] != "what color?" {
		t.Fatalf("unexpected query: %v", input["query"])
	}
}

func TestAnswerSystemPromptEscapesNothing(t *testing.T) {
	// Descriptions may contain braces; they must land verbatim.
	prompt := answerSystemPrompt(`text reads "{50% OFF}"`)
	if !strings.Contains(prompt, `text reads "{50% OFF}"`) {
		t.Fatal("description must be embedded verbatim")
	}
}
