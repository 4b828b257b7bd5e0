// Package llm provides streaming chat completion clients for the language
// model providers clipper can answer with.
package llm

// Message roles understood by every provider clipper supports.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
