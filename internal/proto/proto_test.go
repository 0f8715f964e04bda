package proto

import (
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/require"
)

func TestStringer(t *testing.T) {
	messages := []Message{
		{
			Role:    RoleSystem,
			Content: "You are a helpful assistant.",
		},
		{
			Role:    RoleUser,
			Content: "In one sentence, what is the Model Context Protocol?",
		},
		{
			Role:    RoleUser,
			Content: "",
		},
	}

	golden.RequireEqual(t, []byte(Conversation(messages).String()))
}

func TestNewConversation(t *testing.T) {
	t.Run("with system", func(t *testing.T) {
		cc := NewConversation("sys", "hi")
		require.Equal(t, Conversation{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "hi"},
		}, cc)
	})

	t.Run("without system", func(t *testing.T) {
		cc := NewConversation("", "hi")
		require.Equal(t, Conversation{
			{Role: RoleUser, Content: "hi"},
		}, cc)
	})
}
