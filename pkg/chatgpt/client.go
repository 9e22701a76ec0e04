package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// DefaultBaseURL is the chat-completion API root
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultSystemPrompt is used when the channel has no topic to steer the model
const DefaultSystemPrompt = "You're concise"

// Client is a client for the ChatGPT chat-completion API
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a new ChatGPT client
func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
	}
}

// SetBaseURL overrides the API root, mainly for tests
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// RequestFromCommand builds the completion request for one deferred chat
// command. The channel topic, when present, becomes the system prompt.
// Unrecognized message variants from newer deploys are skipped.
func (c *Client) RequestFromCommand(cmd *models.ChatCommand) *models.ChatCompletionRequest {
	systemPrompt := DefaultSystemPrompt
	if cmd.Topic != "" {
		systemPrompt = cmd.Topic
	}

	messages := []models.ChatCompletionMessage{models.SystemMessage(systemPrompt)}
	for _, turn := range cmd.Messages {
		switch turn.Role() {
		case models.RoleUser:
			messages = append(messages, models.UserMessage(turn.Content()))
		case models.RoleAssistant:
			messages = append(messages, models.AssistantMessage(turn.Content()))
		}
	}

	return &models.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	}
}

func (c *Client) post(ctx context.Context, req *models.ChatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post chat completions: %w", err)
	}

	return resp, nil
}

// CreateCompletion issues a non-streaming completion and returns the parsed
// response
func (c *Client) CreateCompletion(ctx context.Context, messages []models.ChatCompletionMessage) (*models.ChatCompletionResponse, error) {
	resp, err := c.post(ctx, &models.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, data)
	}

	var completion models.ChatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, fmt.Errorf("unmarshal completion response: %w", err)
	}

	return &completion, nil
}

// CreateCompletionStream issues a streaming completion request. The caller
// owns the response and must close its body; a non-200 status carries the
// upstream error body instead of an event stream.
func (c *Client) CreateCompletionStream(ctx context.Context, req *models.ChatCompletionRequest) (*http.Response, error) {
	req.Stream = true
	return c.post(ctx, req)
}
