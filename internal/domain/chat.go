package domain

// Roles a transcript entry can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single transcript entry. It only ever exists as rendered
// output; nothing persists it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a transcript entry authored by the user.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage returns a transcript entry authored by the assistant.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// Fixed transcript texts.
const (
	Greeting             = "👋 Hello! I'm your Chief of Staff AI assistant. I can help you manage your calendar, emails, and remember your preferences. How can I help you today?"
	MsgPleaseLogIn       = "Please log in first to use the chat."
	MsgSessionExpired    = "Your session has expired. Please log in again to continue."
	MsgAuthFailed        = "Authentication failed. Please log in again."
	MsgChatFailed        = "Sorry, I encountered an error. Please try again."
	MsgNetworkError      = "Network error. Please check your connection."
	DefaultUnauthorized  = "Session expired"
	DefaultAuthRejection = "Authentication failed"
)

// QuickMessages are the canned prompts offered next to the input.
var QuickMessages = []string{
	"What's on my calendar today?",
	"Summarize my unread emails",
	"Schedule a meeting tomorrow at 10am",
	"What do you remember about my preferences?",
}
