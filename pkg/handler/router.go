package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// ThreadOnlyMessage is returned when chata is invoked outside a thread
const ThreadOnlyMessage = "The `chata` command is only available in a thread. Use `/chat` instead."

// NothingToChatMessage is returned when the originating channel has no
// readable prompt message
const NothingToChatMessage = "I couldn't find a message to chat about in this channel."

const defaultReadCount = 3
const maxReadCount = 100

// DiscordAPI defines the Discord REST operations the router needs
type DiscordAPI interface {
	GetChannel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GetMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error)
}

// CommandStore persists deferred command records
type CommandStore interface {
	Save(ctx context.Context, record *models.CommandRecord) error
}

// Router dispatches decoded interactions to command handlers. It decides
// which commands can be answered immediately and which must be deferred to
// the stream consumer via a durable command record.
type Router struct {
	discord       DiscordAPI
	store         CommandStore
	applicationID string
}

// NewRouter creates a new interaction router
func NewRouter(discord DiscordAPI, store CommandStore, applicationID string) *Router {
	return &Router{
		discord:       discord,
		store:         store,
		applicationID: applicationID,
	}
}

// Response is the HTTP response the webhook should return for an interaction
type Response struct {
	StatusCode  int
	ContentType string
	Body        string
}

func jsonResponse(resp *models.InteractionResponse) (Response, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return Response{}, fmt.Errorf("marshal interaction response: %w", err)
	}
	return Response{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        string(data),
	}, nil
}

func textResponse(status int, body string) Response {
	return Response{
		StatusCode:  status,
		ContentType: "text/plain",
		Body:        body,
	}
}

// Route handles one decoded interaction and returns the webhook response.
// A returned error means the caller should respond with a 500; notably a
// failed command-record write must never produce a deferred ack.
func (r *Router) Route(ctx context.Context, req *models.InteractionRequest) (Response, error) {
	switch req.Type {
	case models.InteractionTypePing:
		return jsonResponse(models.Pong())

	case models.InteractionTypeApplicationCommand:
		if req.Data == nil {
			return textResponse(http.StatusBadRequest, "invalid interaction data"), nil
		}
		switch req.Data.Name {
		case "chat":
			return r.handleChat(ctx, req)
		case "chats":
			return r.handleChats(ctx, req, false)
		case "chata":
			return r.handleChats(ctx, req, true)
		default:
			log.Printf("Unsupported command: %s", req.Data.Name)
			return textResponse(http.StatusBadRequest, "Unsupported commands"), nil
		}

	default:
		// Lenient for forward compatibility with new interaction types
		log.Printf("Ignoring interaction type: %d", req.Type)
		return textResponse(http.StatusOK, "unsupported type"), nil
	}
}

// handleChat defers a chat command seeded with the most recent channel message
func (r *Router) handleChat(ctx context.Context, req *models.InteractionRequest) (Response, error) {
	if req.ChannelID == "" {
		return textResponse(http.StatusBadRequest, "channel_id is required"), nil
	}

	topic, err := r.resolveTopic(ctx, req.ChannelID)
	if err != nil {
		return Response{}, err
	}

	msgs, err := r.discord.GetMessages(ctx, req.ChannelID, 1)
	if err != nil {
		return Response{}, fmt.Errorf("get messages: %w", err)
	}

	var prompt string
	if len(msgs) > 0 {
		prompt = messageContent(msgs[0])
	}
	if prompt == "" {
		return jsonResponse(models.ChannelMessage(NothingToChatMessage))
	}

	record := models.NewChatCommandRecord(
		req.ID, req.ChannelID, req.Token, topic,
		[]models.ChatMessage{models.UserTurn(prompt)},
		time.Now(),
	)
	return r.deferCommand(ctx, record)
}

// handleChats defers a chat command seeded with the last N channel messages.
// With threadOnly set (the chata command) the channel must be a thread.
func (r *Router) handleChats(ctx context.Context, req *models.InteractionRequest, threadOnly bool) (Response, error) {
	if req.ChannelID == "" {
		return textResponse(http.StatusBadRequest, "channel_id is required"), nil
	}

	channel, err := r.discord.GetChannel(ctx, req.ChannelID)
	if err != nil {
		return Response{}, fmt.Errorf("get channel: %w", err)
	}

	if threadOnly && !isThread(channel) {
		return jsonResponse(models.ChannelMessage(ThreadOnlyMessage))
	}

	topic, err := r.topicFor(ctx, channel)
	if err != nil {
		return Response{}, err
	}

	readCount := req.Data.IntOption("read_count", defaultReadCount)
	if readCount <= 0 {
		readCount = defaultReadCount
	}
	if readCount > maxReadCount {
		readCount = maxReadCount
	}

	msgs, err := r.discord.GetMessages(ctx, req.ChannelID, readCount)
	if err != nil {
		return Response{}, fmt.Errorf("get messages: %w", err)
	}

	turns := r.chatTurns(msgs)
	if len(turns) == 0 {
		return jsonResponse(models.ChannelMessage(NothingToChatMessage))
	}

	record := models.NewChatCommandRecord(
		req.ID, req.ChannelID, req.Token, topic, turns, time.Now(),
	)
	return r.deferCommand(ctx, record)
}

// deferCommand persists the command record and, only once the write succeeded,
// promises a follow-up with a deferred ack
func (r *Router) deferCommand(ctx context.Context, record *models.CommandRecord) (Response, error) {
	if err := r.store.Save(ctx, record); err != nil {
		return Response{}, fmt.Errorf("save command record: %w", err)
	}
	log.Printf("Deferred %s command %s for channel %s", record.CommandType, record.ID, record.Chat.ChannelID)
	return jsonResponse(models.DeferredChannelMessage())
}

// resolveTopic loads the channel and returns its topic; threads use the
// parent channel's topic since threads have none of their own
func (r *Router) resolveTopic(ctx context.Context, channelID string) (string, error) {
	channel, err := r.discord.GetChannel(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("get channel: %w", err)
	}
	return r.topicFor(ctx, channel)
}

func (r *Router) topicFor(ctx context.Context, channel *discordgo.Channel) (string, error) {
	if isThread(channel) && channel.ParentID != "" {
		parent, err := r.discord.GetChannel(ctx, channel.ParentID)
		if err != nil {
			return "", fmt.Errorf("get parent channel: %w", err)
		}
		return parent.Topic, nil
	}
	return channel.Topic, nil
}

func isThread(channel *discordgo.Channel) bool {
	return channel.Type == discordgo.ChannelTypeGuildPublicThread ||
		channel.Type == discordgo.ChannelTypeGuildPrivateThread
}

// chatTurns converts channel history (newest first, as returned by Discord)
// into chronological chat turns. Messages authored by the bot itself become
// assistant turns, everything else user turns. Consecutive same-role turns
// are merged with a newline so the conversation alternates roles.
func (r *Router) chatTurns(msgs []*discordgo.Message) []models.ChatMessage {
	var turns []models.ChatMessage
	for i := len(msgs) - 1; i >= 0; i-- {
		content := messageContent(msgs[i])
		if content == "" {
			continue
		}

		turn := models.UserTurn(content)
		if msgs[i].Author != nil && msgs[i].Author.ID == r.applicationID {
			turn = models.AssistantTurn(content)
		}

		if n := len(turns); n > 0 && turns[n-1].Role() == turn.Role() {
			turns[n-1] = turns[n-1].WithContent(turns[n-1].Content() + "\n" + turn.Content())
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

// messageContent returns the message text, preferring the referenced message
// when this one is a reply. Only one level is ever unwrapped.
func messageContent(m *discordgo.Message) string {
	if m.ReferencedMessage != nil {
		return m.ReferencedMessage.Content
	}
	return m.Content
}
