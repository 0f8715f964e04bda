package node

import (
	"github.com/openai/openai-go"

	"github.com/gaianet/mcp-smoke/internal/proto"
)

func fromProtoMessages(input proto.Conversation) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, msg := range input {
		switch msg.Role {
		case proto.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case proto.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
