package models

import "encoding/json"

// Interaction request types
// https://discord.com/developers/docs/interactions/receiving-and-responding#interaction-object
const (
	InteractionTypePing               = 1
	InteractionTypeApplicationCommand = 2
)

// Interaction response types
const (
	ResponseTypePong                   = 1
	ResponseTypeChannelMessage         = 4
	ResponseTypeDeferredChannelMessage = 5
)

// InteractionRequest is the webhook payload Discord posts to the interactions
// endpoint. Data is only present for application command invocations (type 2).
type InteractionRequest struct {
	ID        string           `json:"id"`
	Token     string           `json:"token"`
	Type      int              `json:"type"`
	ChannelID string           `json:"channel_id,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
	User      *User            `json:"user,omitempty"`
	Member    *GuildMember     `json:"member,omitempty"`
}

// InteractionData carries the invoked command and its options
type InteractionData struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Options []InteractionOption `json:"options,omitempty"`
}

// InteractionOption is a single command option. Discord sends the value as
// either a JSON number or string depending on the option type.
type InteractionOption struct {
	Name  string      `json:"name"`
	Type  int         `json:"type"`
	Value OptionValue `json:"value,omitempty"`
}

// OptionValue defers decoding of the int-or-string option value
type OptionValue struct {
	raw json.RawMessage
}

func (v *OptionValue) UnmarshalJSON(data []byte) error {
	v.raw = append(v.raw[:0], data...)
	return nil
}

func (v OptionValue) MarshalJSON() ([]byte, error) {
	if v.raw == nil {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Int returns the option value as an integer if it was sent as a JSON number
func (v OptionValue) Int() (int, bool) {
	var n int
	if err := json.Unmarshal(v.raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// StringValue returns the option value if it was sent as a JSON string
func (v OptionValue) StringValue() (string, bool) {
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// IntOption returns the named integer option, or def when absent or not an int
func (d *InteractionData) IntOption(name string, def int) int {
	for _, opt := range d.Options {
		if opt.Name != name {
			continue
		}
		if n, ok := opt.Value.Int(); ok {
			return n
		}
	}
	return def
}

// User is the Discord user shape we care about
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// GuildMember wraps the user when the interaction originates in a guild
type GuildMember struct {
	User *User `json:"user,omitempty"`
}

// InteractionMessage is the data payload of an immediate channel message response
type InteractionMessage struct {
	TTS     bool   `json:"tts,omitempty"`
	Content string `json:"content,omitempty"`
}

// InteractionResponse is the JSON body returned to the interactions webhook
type InteractionResponse struct {
	Type int                 `json:"type"`
	Data *InteractionMessage `json:"data,omitempty"`
}

// Pong is the response for a ping interaction
func Pong() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypePong}
}

// ChannelMessage is an immediate type-4 response with content
func ChannelMessage(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseTypeChannelMessage,
		Data: &InteractionMessage{Content: content},
	}
}

// DeferredChannelMessage acknowledges the interaction and promises a follow-up
func DeferredChannelMessage() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypeDeferredChannelMessage}
}
