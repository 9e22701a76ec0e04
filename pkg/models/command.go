package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// CommandType values stored in the CommandType attribute. New kinds can be
// added without breaking existing records; consumers skip unknown tags.
const (
	CommandTypeChat = "Chat"
)

// Chat turn roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CommandRecord is the durable handoff payload written by the interactions
// handler and picked up by the stream consumer. Attribute names are
// PascalCase to stay compatible with records written by earlier deploys.
type CommandRecord struct {
	ID          string       `dynamodbav:"Id"`
	CommandType string       `dynamodbav:"CommandType"`
	Chat        *ChatCommand `dynamodbav:"Command,omitempty"`
	CreatedAt   int64        `dynamodbav:"CreatedAt"`
	UpdatedAt   int64        `dynamodbav:"UpdatedAt"`
	// ProcessedAt is set by the consumer on first pickup and doubles as the
	// idempotency marker for at-least-once stream delivery
	ProcessedAt int64 `dynamodbav:"ProcessedAt,omitempty"`
}

// ChatCommand is the payload of a deferred chat command
type ChatCommand struct {
	ChannelID        string        `dynamodbav:"channel_id"`
	InteractionToken string        `dynamodbav:"interaction_token"`
	Topic            string        `dynamodbav:"topic,omitempty"`
	Messages         []ChatMessage `dynamodbav:"messages"`
}

// ChatMessage is a role-tagged conversation turn, stored externally tagged
// ({"User":{"content":...}} or {"Assistant":{"content":...}}). A message with
// neither tag set came from a newer deploy and is ignored by consumers.
type ChatMessage struct {
	User      *ChatMessageContent `dynamodbav:"User,omitempty"`
	Assistant *ChatMessageContent `dynamodbav:"Assistant,omitempty"`
}

// ChatMessageContent holds the text of a turn
type ChatMessageContent struct {
	Content string `dynamodbav:"content"`
}

// UserTurn builds a user-authored chat turn
func UserTurn(content string) ChatMessage {
	return ChatMessage{User: &ChatMessageContent{Content: content}}
}

// AssistantTurn builds a bot-authored chat turn
func AssistantTurn(content string) ChatMessage {
	return ChatMessage{Assistant: &ChatMessageContent{Content: content}}
}

// Role returns the turn's role, or "" for an unrecognized variant
func (m ChatMessage) Role() string {
	switch {
	case m.User != nil:
		return RoleUser
	case m.Assistant != nil:
		return RoleAssistant
	default:
		return ""
	}
}

// Content returns the turn's text, or "" for an unrecognized variant
func (m ChatMessage) Content() string {
	switch {
	case m.User != nil:
		return m.User.Content
	case m.Assistant != nil:
		return m.Assistant.Content
	default:
		return ""
	}
}

// WithContent returns a turn with the same role and replaced text
func (m ChatMessage) WithContent(content string) ChatMessage {
	switch {
	case m.User != nil:
		return UserTurn(content)
	case m.Assistant != nil:
		return AssistantTurn(content)
	default:
		return m
	}
}

// NewChatCommandRecord builds the handoff record for one deferred chat
// command, keyed by the interaction id. A record built without an interaction
// id gets a generated one so it still lands on a unique key.
func NewChatCommandRecord(interactionID, channelID, interactionToken, topic string, messages []ChatMessage, now time.Time) *CommandRecord {
	if interactionID == "" {
		interactionID = "cmd-" + generateULID()
	}
	ts := now.Unix()
	return &CommandRecord{
		ID:          interactionID,
		CommandType: CommandTypeChat,
		Chat: &ChatCommand{
			ChannelID:        channelID,
			InteractionToken: interactionToken,
			Topic:            topic,
			Messages:         messages,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// generateULID generates a ULID string for unique identifiers
func generateULID() string {
	id, _ := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	return id.String()
}
