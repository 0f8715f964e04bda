// Package proto shared protocol.
package proto

import "strings"

// Roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a message in the conversation.
type Message struct {
	Role    string
	Content string
}

// Conversation is a conversation.
type Conversation []Message

// NewConversation returns a system prompt followed by a user prompt. An empty
// system prompt is left out.
func NewConversation(system, user string) Conversation {
	var cc Conversation
	if system != "" {
		cc = append(cc, Message{Role: RoleSystem, Content: system})
	}
	return append(cc, Message{Role: RoleUser, Content: user})
}

func (cc Conversation) String() string {
	var sb strings.Builder
	for _, msg := range cc {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			sb.WriteString("**System**: ")
		case RoleUser:
			sb.WriteString("**User**: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
