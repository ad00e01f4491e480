package chat

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in a session transcript. Turns are append-only: an
// answered question always lands as one user turn followed by one assistant
// turn.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
