package models

import (
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

func TestNewChatCommandRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []ChatMessage{UserTurn("hello")}

	record := NewChatCommandRecord("interaction-123", "channel-456", "token-789", "be brief", messages, now)

	if record.ID != "interaction-123" {
		t.Errorf("ID = %s, want interaction-123", record.ID)
	}

	if record.CommandType != CommandTypeChat {
		t.Errorf("CommandType = %s, want %s", record.CommandType, CommandTypeChat)
	}

	if record.Chat == nil {
		t.Fatal("Chat payload should be set")
	}

	if record.Chat.ChannelID != "channel-456" {
		t.Errorf("ChannelID = %s, want channel-456", record.Chat.ChannelID)
	}

	if record.Chat.InteractionToken != "token-789" {
		t.Errorf("InteractionToken = %s, want token-789", record.Chat.InteractionToken)
	}

	if record.Chat.Topic != "be brief" {
		t.Errorf("Topic = %s, want be brief", record.Chat.Topic)
	}

	if len(record.Chat.Messages) != 1 || record.Chat.Messages[0].Content() != "hello" {
		t.Errorf("Messages = %+v, want one user turn", record.Chat.Messages)
	}

	if record.CreatedAt != now.Unix() {
		t.Errorf("CreatedAt = %d, want %d", record.CreatedAt, now.Unix())
	}

	if record.UpdatedAt != now.Unix() {
		t.Errorf("UpdatedAt = %d, want %d", record.UpdatedAt, now.Unix())
	}

	if record.ProcessedAt != 0 {
		t.Errorf("ProcessedAt = %d, want unset", record.ProcessedAt)
	}
}

func TestNewChatCommandRecordGeneratesID(t *testing.T) {
	record := NewChatCommandRecord("", "channel", "token", "", nil, time.Now())

	if record.ID == "" {
		t.Error("ID should not be empty")
	}

	if !strings.HasPrefix(record.ID, "cmd-") {
		t.Errorf("generated ID should start with 'cmd-', got %s", record.ID)
	}
}

func TestChatMessageRoles(t *testing.T) {
	tests := []struct {
		name        string
		message     ChatMessage
		wantRole    string
		wantContent string
	}{
		{
			name:        "user turn",
			message:     UserTurn("what is Go?"),
			wantRole:    RoleUser,
			wantContent: "what is Go?",
		},
		{
			name:        "assistant turn",
			message:     AssistantTurn("a programming language"),
			wantRole:    RoleAssistant,
			wantContent: "a programming language",
		},
		{
			name:        "unrecognized variant",
			message:     ChatMessage{},
			wantRole:    "",
			wantContent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.message.Role(); got != tt.wantRole {
				t.Errorf("Role() = %q, want %q", got, tt.wantRole)
			}
			if got := tt.message.Content(); got != tt.wantContent {
				t.Errorf("Content() = %q, want %q", got, tt.wantContent)
			}
		})
	}
}

func TestChatMessageWithContent(t *testing.T) {
	merged := UserTurn("first").WithContent("first\nsecond")

	if merged.Role() != RoleUser {
		t.Errorf("Role() = %q, want %q", merged.Role(), RoleUser)
	}

	if merged.Content() != "first\nsecond" {
		t.Errorf("Content() = %q, want %q", merged.Content(), "first\nsecond")
	}

	unknown := ChatMessage{}.WithContent("ignored")
	if unknown.Role() != "" {
		t.Errorf("unknown variant should stay unknown, got role %q", unknown.Role())
	}
}

func TestCommandRecordAttributeNames(t *testing.T) {
	record := NewChatCommandRecord("id-1", "chan-1", "tok-1", "topic", []ChatMessage{
		UserTurn("hi"),
		AssistantTurn("hello"),
	}, time.Now())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		t.Fatalf("MarshalMap failed: %v", err)
	}

	for _, name := range []string{"Id", "CommandType", "Command", "CreatedAt", "UpdatedAt"} {
		if _, ok := item[name]; !ok {
			t.Errorf("marshaled record missing attribute %s", name)
		}
	}

	if _, ok := item["ProcessedAt"]; ok {
		t.Error("ProcessedAt should be omitted until the record is claimed")
	}
}
