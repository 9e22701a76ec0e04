package models

// ChatCompletionMessage is one turn of a chat-completion request
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role completion message
func SystemMessage(content string) ChatCompletionMessage {
	return ChatCompletionMessage{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role completion message
func UserMessage(content string) ChatCompletionMessage {
	return ChatCompletionMessage{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role completion message
func AssistantMessage(content string) ChatCompletionMessage {
	return ChatCompletionMessage{Role: RoleAssistant, Content: content}
}

// ChatCompletionRequest is the request body for the chat-completion API
type ChatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []ChatCompletionMessage `json:"messages"`
	Stream   bool                    `json:"stream,omitempty"`
}

// ChatCompletionUsage is the token accounting of a non-streaming completion
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChoice is one candidate of a non-streaming completion
type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	FinishReason string                `json:"finish_reason"`
	Message      ChatCompletionMessage `json:"message"`
}

// ChatCompletionResponse is a complete, non-streaming completion
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Usage   ChatCompletionUsage    `json:"usage"`
	Choices []ChatCompletionChoice `json:"choices"`
}

// TotalTokenUsage returns the total tokens billed for this completion
func (r *ChatCompletionResponse) TotalTokenUsage() int {
	return r.Usage.TotalTokens
}

// ChatCompletionChunkDelta carries the incremental assistant text of one chunk
type ChatCompletionChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatCompletionChunkChoice is one candidate of a streamed chunk
type ChatCompletionChunkChoice struct {
	Index        int                      `json:"index"`
	Delta        ChatCompletionChunkDelta `json:"delta"`
	FinishReason *string                  `json:"finish_reason"`
}

// ChatCompletionChunk is one partial frame of a streamed completion.
// Concatenating delta contents in arrival order reconstructs the message.
type ChatCompletionChunk struct {
	ID      string                      `json:"id"`
	Object  string                      `json:"object"`
	Created int64                       `json:"created"`
	Model   string                      `json:"model"`
	Choices []ChatCompletionChunkChoice `json:"choices"`
}

// DeltaContent returns the concatenated delta text of all choices in the chunk
func (c *ChatCompletionChunk) DeltaContent() string {
	var s string
	for _, choice := range c.Choices {
		s += choice.Delta.Content
	}
	return s
}
