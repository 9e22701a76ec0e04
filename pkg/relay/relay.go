package relay

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cashewnuts/discord-chatbot/pkg/chatgpt"
)

// DefaultBatchSize is the number of chunks coalesced into one message edit
const DefaultBatchSize = 10

const readBufferSize = 1024

// FollowupSender delivers and edits the follow-up message of one interaction
type FollowupSender interface {
	CreateFollowup(ctx context.Context, interactionToken, content string) (string, error)
	EditFollowup(ctx context.Context, interactionToken, messageID, content string) error
}

// Relay converts a streaming completion response into a live-edited Discord
// follow-up message. Chunks are coalesced into batches so the message is
// edited in readable increments rather than once per token; each edit
// replaces the whole content with the text accumulated so far, so the user
// always sees growing text. Edits are strictly sequential.
type Relay struct {
	sender    FollowupSender
	batchSize int
}

// New creates a relay; batchSize <= 0 selects the default
func New(sender FollowupSender, batchSize int) *Relay {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Relay{
		sender:    sender,
		batchSize: batchSize,
	}
}

// Run relays one streaming completion response into the follow-up message of
// the given interaction. A non-200 upstream status skips streaming and posts
// the raw error body instead, so the user never stares at a hung "thinking"
// indicator.
func (r *Relay) Run(ctx context.Context, interactionToken string, resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		log.Printf("Chat completion returned status %d", resp.StatusCode)
		if _, err := r.sender.CreateFollowup(ctx, interactionToken, string(errBody)); err != nil {
			return fmt.Errorf("post error followup: %w", err)
		}
		return nil
	}

	parser := chatgpt.NewStreamParser()
	var accumulated strings.Builder
	var messageID string
	var batch []string

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		accumulated.WriteString(strings.Join(batch, ""))
		batch = batch[:0]

		content := accumulated.String()
		if content == "" {
			return nil
		}
		if messageID == "" {
			id, err := r.sender.CreateFollowup(ctx, interactionToken, content)
			if err != nil {
				return fmt.Errorf("create followup: %w", err)
			}
			messageID = id
			return nil
		}
		if err := r.sender.EditFollowup(ctx, interactionToken, messageID, content); err != nil {
			return fmt.Errorf("edit followup: %w", err)
		}
		return nil
	}

	buf := make([]byte, readBufferSize)
	for !parser.Done() {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, chunk := range parser.Feed(buf[:n]) {
				batch = append(batch, chunk.DeltaContent())
			}
			if len(batch) >= r.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read completion stream: %w", err)
		}
	}

	// Flush whatever remains when the stream ends
	if err := flush(); err != nil {
		return err
	}

	log.Printf("Relayed completion into followup message %s (%d characters)", messageID, accumulated.Len())
	return nil
}
