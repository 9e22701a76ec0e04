package chatgpt

import (
	"bytes"
	"encoding/json"

	"github.com/cashewnuts/discord-chatbot/pkg/models"
)

// frameMarker prefixes every logical frame of the event stream
const frameMarker = "data: "

// doneToken is the literal sentinel frame ending the stream
const doneToken = "[DONE]"

// minChunkSize is the shortest transport chunk worth parsing; anything
// shorter than the frame marker itself cannot carry a frame
const minChunkSize = 6

// StreamParser incrementally decodes the chunked event stream of a streaming
// chat completion. Raw transport chunks may straddle frame boundaries or
// carry several frames at once; the parser buffers partial frames across
// Feed calls and emits each chunk as soon as its JSON parses. The [DONE]
// sentinel is handled here as the end-of-stream token, not by callers.
type StreamParser struct {
	partial []byte
	done    bool
}

// NewStreamParser creates a parser in the awaiting-frame state
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Done reports whether the [DONE] sentinel has been seen
func (p *StreamParser) Done() bool {
	return p.done
}

// Feed consumes one raw transport chunk and returns the completed chunks it
// finished. Unparsable fragments are re-buffered for the next call, never
// surfaced as errors; anything after the [DONE] sentinel is ignored.
func (p *StreamParser) Feed(chunk []byte) []models.ChatCompletionChunk {
	if p.done || len(chunk) < minChunkSize {
		return nil
	}

	var out []models.ChatCompletionChunk
	for _, fragment := range bytes.Split(chunk, []byte(frameMarker)) {
		if len(fragment) == 0 {
			continue
		}
		if string(bytes.TrimSpace(fragment)) == doneToken {
			p.done = true
			p.partial = nil
			break
		}

		// Fragments are appended untrimmed: a frame may split inside a JSON
		// string where surrounding whitespace is significant
		p.partial = append(p.partial, fragment...)
		var parsed models.ChatCompletionChunk
		if err := json.Unmarshal(p.partial, &parsed); err != nil {
			// accumulating-partial: wait for the rest of the frame
			continue
		}
		out = append(out, parsed)
		p.partial = nil
	}

	return out
}
