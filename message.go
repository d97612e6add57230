package rulecraft

// Role represents the role of a conversation message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of the conversation sent to the backend.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
