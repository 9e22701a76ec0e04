package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Client wraps the discordgo session for REST-only use throughout the
// application. No gateway connection is ever opened.
type Client struct {
	session       *discordgo.Session
	applicationID string
}

// NewClient creates a new Discord REST client with a bot token
func NewClient(botToken, applicationID string) (*Client, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &Client{
		session:       session,
		applicationID: applicationID,
	}, nil
}

// GetRawSession returns the underlying discordgo session for advanced operations
func (c *Client) GetRawSession() *discordgo.Session {
	return c.session
}

// GetChannel fetches a channel by id
func (c *Client) GetChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	channel, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}

	return channel, nil
}

// GetMessages fetches the most recent messages of a channel, newest first
func (c *Client) GetMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error) {
	msgs, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	return msgs, nil
}

// GetMessage fetches a single channel message
func (c *Client) GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}

	return msg, nil
}

// PostMessage posts a plain message to a channel
func (c *Client) PostMessage(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	return msg, nil
}

// StartThread starts a public thread on a channel
func (c *Client) StartThread(ctx context.Context, channelID, name string) (*discordgo.Channel, error) {
	thread, err := c.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, 60, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("start thread: %w", err)
	}

	return thread, nil
}

// interaction builds the handle discordgo needs to address follow-up
// endpoints; only the application id and the interaction token matter
func (c *Client) interaction(token string) *discordgo.Interaction {
	return &discordgo.Interaction{
		AppID: c.applicationID,
		Token: token,
	}
}

// CreateFollowup creates the follow-up message after a deferred ack and
// returns the message id needed for subsequent edits
func (c *Client) CreateFollowup(ctx context.Context, interactionToken, content string) (string, error) {
	msg, err := c.session.FollowupMessageCreate(c.interaction(interactionToken), true, &discordgo.WebhookParams{
		Content: content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create followup message: %w", err)
	}

	return msg.ID, nil
}

// EditFollowup replaces the entire content of an existing follow-up message
func (c *Client) EditFollowup(ctx context.Context, interactionToken, messageID, content string) error {
	_, err := c.session.FollowupMessageEdit(c.interaction(interactionToken), messageID, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit followup message: %w", err)
	}

	return nil
}

// RegisterCommand registers an application command, globally or for one guild
func (c *Client) RegisterCommand(ctx context.Context, guildID string, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
	created, err := c.session.ApplicationCommandCreate(c.applicationID, guildID, cmd, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("register command %s: %w", cmd.Name, err)
	}

	return created, nil
}

// Commands lists the registered application commands
func (c *Client) Commands(ctx context.Context, guildID string) ([]*discordgo.ApplicationCommand, error) {
	cmds, err := c.session.ApplicationCommands(c.applicationID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}

	return cmds, nil
}

// DeleteCommand deletes a registered application command
func (c *Client) DeleteCommand(ctx context.Context, guildID, commandID string) error {
	if err := c.session.ApplicationCommandDelete(c.applicationID, guildID, commandID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete command: %w", err)
	}

	return nil
}
