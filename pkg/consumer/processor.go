package consumer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cashewnuts/discord-chatbot/pkg/chatgpt"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// MessageRelay turns a streaming completion response into follow-up edits
type MessageRelay interface {
	Run(ctx context.Context, interactionToken string, resp *http.Response) error
}

// ChatProcessor handles one chat command record: it issues the streaming
// completion request and hands the response to the relay
type ChatProcessor struct {
	completions *chatgpt.Client
	relay       MessageRelay
}

// NewChatProcessor creates a chat command processor
func NewChatProcessor(completions *chatgpt.Client, relay MessageRelay) *ChatProcessor {
	return &ChatProcessor{
		completions: completions,
		relay:       relay,
	}
}

// Process runs one chat command end to end
func (p *ChatProcessor) Process(ctx context.Context, record *models.CommandRecord) error {
	req := p.completions.RequestFromCommand(record.Chat)

	resp, err := p.completions.CreateCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("create completion stream: %w", err)
	}

	if err := p.relay.Run(ctx, record.Chat.InteractionToken, resp); err != nil {
		return fmt.Errorf("relay completion: %w", err)
	}

	return nil
}
