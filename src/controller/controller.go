// Package controller drives one logical "send message" interaction at a time
// against the remote model endpoint, synchronized with the chat store. A new
// send supersedes any request still in flight; superseded responses are
// discarded and never touch the store.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gemchat/gemchat/src/chatstore"
	"github.com/gemchat/gemchat/src/genai"
)

// ErrCancelled indicates a send was explicitly cancelled or superseded.
var ErrCancelled = errors.New("request cancelled")

// cancelledMarker is the transient status shown for a cancelled send. Not a
// transcript entry.
const cancelledMarker = "Request cancelled"

// Options configures a Controller.
type Options struct {
	// SystemPrompt and SetupPrompt seed an empty conversation (as model-role
	// turns, in that order) before the first message is sent.
	SystemPrompt string
	SetupPrompt  string

	Generation *genai.GenerationConfig
	Safety     []genai.SafetySetting

	Logger *slog.Logger
}

// Client is what the controller needs from the model endpoint.
type Client interface {
	GenerateContent(ctx context.Context, req *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

// Controller orchestrates sends for one conversation stream. All conversation
// data flows through the store; the controller never mutates it directly.
type Controller struct {
	store  *chatstore.Store
	client Client
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	busy   bool
	errMsg string
	seq    uint64 // token of the latest request; stale settlements are discarded
	cancel context.CancelFunc
}

// New creates a Controller over store and client.
func New(store *chatstore.Store, client Client, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  store,
		client: client,
		opts:   opts,
		logger: logger.With("component", "controller"),
	}
}

// Send appends text as a user message, calls the endpoint with the full
// stored history, and appends the reply. Empty or whitespace-only text is
// silently ignored. A send that is still in flight is cancelled first, before
// any new store mutation, so stale replies can never land after newer ones.
func (c *Controller) Send(ctx context.Context, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}

	c.mu.Lock()
	c.errMsg = ""
	c.busy = true
	if c.cancel != nil {
		c.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.seq++
	token := c.seq
	c.mu.Unlock()

	c.store.EnsureConversation()
	c.seedIfEmpty()
	c.store.AddMessage(chatstore.RoleUser, content)

	// History is captured once at send time; store changes made while the
	// request is in flight do not alter this request.
	req := &genai.GenerateContentRequest{
		Contents:         historyContents(c.store),
		GenerationConfig: c.opts.Generation,
		SafetySettings:   c.opts.Safety,
	}

	resp, err := c.client.GenerateContent(reqCtx, req)

	// Settlement runs in one critical section with the token check so a
	// superseding send cannot interleave its mutations with ours.
	c.mu.Lock()
	defer c.mu.Unlock()
	defer cancel()
	if token != c.seq {
		// Superseded or explicitly cancelled: the outcome is discarded and
		// must not mutate the store.
		return ErrCancelled
	}
	c.busy = false
	c.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.errMsg = cancelledMarker
			return ErrCancelled
		}
		// Failures other than cancellation are kept visible in the
		// transcript as well as the transient marker.
		c.errMsg = err.Error()
		c.store.AddMessage(chatstore.RoleModel, err.Error())
		return err
	}

	c.store.AddMessage(chatstore.RoleModel, genai.ReplyText(resp))
	return nil
}

// Cancel aborts any request in flight. The busy flag clears immediately; the
// network call is merely signaled and its eventual settlement is swallowed.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.seq++ // invalidate the in-flight token
	c.busy = false
	c.errMsg = cancelledMarker
}

// Reset clears the transient error marker and empties the current
// conversation.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
	c.store.ResetCurrent()
}

// Busy reports whether a send is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// LastError returns the transient error marker, empty when the last send
// succeeded or none has run.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// seedIfEmpty installs the configured seed prompts into the current
// conversation, at most once: conversations that already have messages are
// left untouched.
func (c *Controller) seedIfEmpty() {
	if c.opts.SystemPrompt == "" && c.opts.SetupPrompt == "" {
		return
	}
	conv, ok := c.store.GetCurrent()
	if !ok || len(conv.Messages) > 0 {
		return
	}

	var seeds []chatstore.Message
	now := time.Now()
	for _, prompt := range []string{c.opts.SystemPrompt, c.opts.SetupPrompt} {
		if prompt == "" {
			continue
		}
		seeds = append(seeds, chatstore.Message{
			ID:        uuid.New().String(),
			Role:      chatstore.RoleModel,
			Content:   prompt,
			CreatedAt: now,
		})
	}
	c.store.ReplaceMessages(seeds)
	c.logger.Debug("seeded conversation", "conversation_id", conv.ID, "seeds", len(seeds))
}

// historyContents maps the current conversation's messages 1:1 onto the wire
// turn format, preserving store order.
func historyContents(store *chatstore.Store) []genai.Content {
	msgs := store.Messages()
	contents := make([]genai.Content, 0, len(msgs))
	for _, m := range msgs {
		contents = append(contents, genai.Content{
			Role:  string(m.Role),
			Parts: []genai.Part{{Text: m.Content}},
		})
	}
	return contents
}
