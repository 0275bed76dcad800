package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemchat/gemchat/src/chatstore"
	"github.com/gemchat/gemchat/src/genai"
)

// stubClient scripts endpoint behavior per call.
type stubClient struct {
	mu      sync.Mutex
	calls   []*genai.GenerateContentRequest
	respond func(call int, ctx context.Context, req *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

func (s *stubClient) GenerateContent(ctx context.Context, req *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	call := len(s.calls)
	s.mu.Unlock()
	return s.respond(call, ctx, req)
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []genai.Candidate{{Content: &genai.Content{
			Role:  "model",
			Parts: []genai.Part{{Text: text}},
		}}},
	}
}

func contents(msgs []chatstore.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role) + ":" + m.Content
	}
	return out
}

func TestSendAppendsUserAndReply(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return textResponse("Hi! How can I help?"), nil
		},
	}
	c := New(store, client, Options{})

	require.NoError(t, c.Send(context.Background(), "Hello"))

	index := store.Index()
	require.Len(t, index, 1, "exactly one conversation")
	assert.Equal(t, "Hello", index[0].Title)

	assert.Equal(t,
		[]string{"user:Hello", "model:Hi! How can I help?"},
		contents(store.Messages()))
	assert.False(t, c.Busy())
	assert.Empty(t, c.LastError())
}

func TestSendEmptyTextIsNoOp(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return textResponse("never"), nil
		},
	}
	c := New(store, client, Options{})

	require.NoError(t, c.Send(context.Background(), "   \t\n"))

	assert.Zero(t, client.callCount())
	assert.Empty(t, store.Index())
}

func TestSendBuildsHistoryFromStore(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return textResponse("reply"), nil
		},
	}
	c := New(store, client, Options{SystemPrompt: "persona", SetupPrompt: "setup"})

	require.NoError(t, c.Send(context.Background(), "question"))

	require.Equal(t, 1, client.callCount())
	got := client.calls[0].Contents
	require.Len(t, got, 3, "seeds plus the user turn")
	assert.Equal(t, "model", got[0].Role)
	assert.Equal(t, "persona", got[0].Parts[0].Text)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, "setup", got[1].Parts[0].Text)
	assert.Equal(t, "user", got[2].Role)
	assert.Equal(t, "question", got[2].Parts[0].Text)

	// Seeds are model-role, so the title still comes from the user message.
	assert.Equal(t, "question", store.Index()[0].Title)
}

func TestSeedingHappensAtMostOnce(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return textResponse("reply"), nil
		},
	}
	c := New(store, client, Options{SystemPrompt: "persona"})

	require.NoError(t, c.Send(context.Background(), "first"))
	require.NoError(t, c.Send(context.Background(), "second"))

	assert.Equal(t,
		[]string{
			"model:persona",
			"user:first",
			"model:reply",
			"user:second",
			"model:reply",
		},
		contents(store.Messages()))
}

func TestSendSupersedesInFlightRequest(t *testing.T) {
	store := chatstore.New(nil, nil)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	client := &stubClient{
		respond: func(call int, ctx context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			if call == 1 {
				close(firstStarted)
				// Simulate a response that is delivered after being
				// superseded: ignore cancellation and settle late.
				<-releaseFirst
				return textResponse("stale reply A"), nil
			}
			return textResponse("reply B"), nil
		},
	}
	c := New(store, client, Options{})

	errCh := make(chan error, 1)
	go func() { errCh <- c.Send(context.Background(), "A") }()
	<-firstStarted

	require.NoError(t, c.Send(context.Background(), "B"))

	close(releaseFirst)
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded send never settled")
	}

	// A's late reply must not appear; B's user turn and reply must.
	assert.Equal(t,
		[]string{"user:A", "user:B", "model:reply B"},
		contents(store.Messages()))
	assert.False(t, c.Busy())
}

func TestSendEndpointFailureIsVisibleInTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	store := chatstore.New(nil, nil)
	client := genai.NewClient(genai.Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		RetryCount: 1,
		RetryDelay: time.Millisecond,
	})
	c := New(store, client, Options{})

	err := c.Send(context.Background(), "doomed")
	require.Error(t, err)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chatstore.RoleModel, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "backend exploded")
	assert.Equal(t, msgs[1].Content, c.LastError(),
		"transient marker and transcript entry carry the same text")
	assert.False(t, c.Busy())
}

func TestCancelWhileSending(t *testing.T) {
	store := chatstore.New(nil, nil)

	started := make(chan struct{})
	client := &stubClient{
		respond: func(_ int, ctx context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := New(store, client, Options{})

	errCh := make(chan error, 1)
	go func() { errCh <- c.Send(context.Background(), "question") }()
	<-started
	require.True(t, c.Busy())

	c.Cancel()
	assert.False(t, c.Busy(), "busy clears synchronously")
	assert.Equal(t, "Request cancelled", c.LastError())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled send never settled")
	}

	// No transcript entry from the cancelled request.
	assert.Equal(t, []string{"user:question"}, contents(store.Messages()))
}

func TestCancelWithoutInFlightRequestIsNoOp(t *testing.T) {
	store := chatstore.New(nil, nil)
	c := New(store, &stubClient{}, Options{})

	c.Cancel()
	assert.False(t, c.Busy())
	assert.Empty(t, c.LastError())
}

func TestReset(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return nil, &genai.APIError{StatusCode: 500, Message: "boom"}
		},
	}
	c := New(store, client, Options{})

	require.Error(t, c.Send(context.Background(), "fails"))
	require.NotEmpty(t, c.LastError())

	c.Reset()

	assert.Empty(t, c.LastError())
	conv, ok := store.GetCurrent()
	require.True(t, ok)
	assert.Empty(t, conv.Messages)
	assert.Nil(t, conv.Title)
}

func TestSendNoCandidatesFallback(t *testing.T) {
	store := chatstore.New(nil, nil)
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}
	c := New(store, client, Options{})

	require.NoError(t, c.Send(context.Background(), "hello"))

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "No candidates returned", msgs[1].Content)
}

func TestSendErrorClearsPreviousMarker(t *testing.T) {
	store := chatstore.New(nil, nil)
	fail := true
	client := &stubClient{
		respond: func(_ int, _ context.Context, _ *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error) {
			if fail {
				return nil, &genai.APIError{StatusCode: 503, Message: "unavailable"}
			}
			return textResponse("recovered"), nil
		},
	}
	c := New(store, client, Options{})

	require.Error(t, c.Send(context.Background(), "first"))
	assert.Equal(t, "unavailable", c.LastError())

	fail = false
	require.NoError(t, c.Send(context.Background(), "second"))
	assert.Empty(t, c.LastError())
	assert.False(t, strings.Contains(c.LastError(), "unavailable"))
}
