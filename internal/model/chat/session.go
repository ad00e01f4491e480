package chat

import "time"

// MaxQuestions is the fixed per-session question quota. Once a session has
// answered this many questions it accepts no more and is removed on the next
// attempt.
const MaxQuestions = 5

// Session binds one uploaded image to a short-lived Q&A conversation.
// ImageDescription is produced once at ingest time and never changes; it is
// the only grounding context the answerer sees.
type Session struct {
	ID               string    `json:"id"`
	ImageDescription string    `json:"imageDescription"`
	History          []Turn    `json:"chatHistory"`
	QuestionCount    int       `json:"questionCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Remaining reports how many questions the session may still answer.
func (s Session) Remaining() int {
	if left := MaxQuestions - s.QuestionCount; left > 0 {
		return left
	}
	return 0
}

// Exhausted reports whether the question quota has been spent.
func (s Session) Exhausted() bool {
	return s.QuestionCount >= MaxQuestions
}
