package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// MockFollowupSender mocks the FollowupSender interface for testing
type MockFollowupSender struct {
	CreateFollowupFunc func(ctx context.Context, interactionToken, content string) (string, error)
	EditFollowupFunc   func(ctx context.Context, interactionToken, messageID, content string) error

	Created []string
	Edited  []string
}

// Verify MockFollowupSender implements FollowupSender
var _ FollowupSender = (*MockFollowupSender)(nil)

func (m *MockFollowupSender) CreateFollowup(ctx context.Context, interactionToken, content string) (string, error) {
	if m.CreateFollowupFunc != nil {
		return m.CreateFollowupFunc(ctx, interactionToken, content)
	}
	m.Created = append(m.Created, content)
	return "msg-1", nil
}

func (m *MockFollowupSender) EditFollowup(ctx context.Context, interactionToken, messageID, content string) error {
	if m.EditFollowupFunc != nil {
		return m.EditFollowupFunc(ctx, interactionToken, messageID, content)
	}
	m.Edited = append(m.Edited, content)
	return nil
}

// chunkedReader returns one predefined chunk per Read call, mimicking
// chunked transfer encoding arrival
type chunkedReader struct {
	chunks []string
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := r.chunks[0]
	r.chunks = r.chunks[1:]
	n := copy(p, chunk)
	return n, nil
}

func streamResponse(status int, chunks ...string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(&chunkedReader{chunks: chunks}),
	}
}

func frame(content string) string {
	return fmt.Sprintf(
		`data: {"id":"c1","object":"chat.completion.chunk","created":1700000000,"model":"gpt-3.5-turbo","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`+"\n\n",
		content,
	)
}

func TestRelaySingleFlushAtStreamEnd(t *testing.T) {
	sender := &MockFollowupSender{}
	relay := New(sender, 10)

	// Three chunks never reach the batch threshold, so exactly one message
	// is created at stream end and nothing is edited
	resp := streamResponse(http.StatusOK,
		frame("Hel"), frame("lo "), frame("world"), "data: [DONE]\n\n")

	if err := relay.Run(context.Background(), "tok", resp); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sender.Created) != 1 {
		t.Fatalf("created messages = %d, want 1", len(sender.Created))
	}
	if sender.Created[0] != "Hello world" {
		t.Errorf("created content = %q, want %q", sender.Created[0], "Hello world")
	}
	if len(sender.Edited) != 0 {
		t.Errorf("edits = %d, want 0", len(sender.Edited))
	}
}

func TestRelayEditsShowGrowingText(t *testing.T) {
	sender := &MockFollowupSender{}
	relay := New(sender, 2)

	resp := streamResponse(http.StatusOK,
		frame("a"), frame("b"), frame("c"), frame("d"), frame("e"), "data: [DONE]\n\n")

	if err := relay.Run(context.Background(), "tok", resp); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// First batch creates, later batches edit with the cumulative buffer
	if len(sender.Created) != 1 || sender.Created[0] != "ab" {
		t.Fatalf("created = %v, want [ab]", sender.Created)
	}
	wantEdits := []string{"abcd", "abcde"}
	if len(sender.Edited) != len(wantEdits) {
		t.Fatalf("edits = %v, want %v", sender.Edited, wantEdits)
	}
	for i, want := range wantEdits {
		if sender.Edited[i] != want {
			t.Errorf("edit[%d] = %q, want %q", i, sender.Edited[i], want)
		}
	}

	// The last emitted buffer equals the full delta concatenation
	last := sender.Edited[len(sender.Edited)-1]
	if last != "abcde" {
		t.Errorf("final content = %q, want abcde", last)
	}
}

func TestRelayFrameStraddlingTransportChunks(t *testing.T) {
	sender := &MockFollowupSender{}
	relay := New(sender, 10)

	full := frame("straddled frame")
	mid := len(full) / 2
	resp := streamResponse(http.StatusOK, full[:mid], full[mid:], "data: [DONE]\n\n")

	if err := relay.Run(context.Background(), "tok", resp); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sender.Created) != 1 || sender.Created[0] != "straddled frame" {
		t.Errorf("created = %v, want the reassembled frame content", sender.Created)
	}
}

func TestRelayUpstreamErrorPostedAsFollowup(t *testing.T) {
	sender := &MockFollowupSender{}
	relay := New(sender, 10)

	errBody := `{"error":{"message":"Rate limit reached","type":"requests"}}`
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(strings.NewReader(errBody)),
	}

	if err := relay.Run(context.Background(), "tok", resp); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sender.Created) != 1 || sender.Created[0] != errBody {
		t.Errorf("created = %v, want the raw upstream error body", sender.Created)
	}
	if len(sender.Edited) != 0 {
		t.Errorf("edits = %d, want 0", len(sender.Edited))
	}
}

func TestRelayEmptyStreamPostsNothing(t *testing.T) {
	sender := &MockFollowupSender{}
	relay := New(sender, 10)

	resp := streamResponse(http.StatusOK, "data: [DONE]\n\n")

	if err := relay.Run(context.Background(), "tok", resp); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sender.Created) != 0 || len(sender.Edited) != 0 {
		t.Errorf("created = %v, edited = %v, want no messages", sender.Created, sender.Edited)
	}
}

func TestRelayCreateFailureStopsRelay(t *testing.T) {
	sender := &MockFollowupSender{
		CreateFollowupFunc: func(ctx context.Context, interactionToken, content string) (string, error) {
			return "", errors.New("discord unavailable")
		},
	}
	relay := New(sender, 1)

	resp := streamResponse(http.StatusOK, frame("a"), frame("b"), "data: [DONE]\n\n")

	if err := relay.Run(context.Background(), "tok", resp); err == nil {
		t.Error("Run() should propagate follow-up creation failure")
	}
}
