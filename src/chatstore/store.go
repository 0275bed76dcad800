package chatstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// Placeholders shown in the history index for untitled or empty chats.
	placeholderTitle   = "Empty chat"
	placeholderPreview = "No messages yet"

	persistTimeout = 5 * time.Second
)

// Store holds the authoritative conversation state. Every mutation runs under
// one mutex, persists the new root to the slot, and publishes a snapshot to
// subscribers. Mutations never fail: missing conversations are created on
// demand and persistence errors are logged and swallowed, leaving the
// in-memory state authoritative.
type Store struct {
	mu     sync.Mutex
	state  state
	slot   Slot
	logger *slog.Logger
	bcast  *broadcaster
}

// New creates a Store rehydrated from slot. A nil slot disables persistence.
// An unreadable or absent blob leaves the store at its empty initial state.
func New(slot Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "chatstore")

	s := &Store{
		state:  newState(),
		slot:   slot,
		logger: logger,
		bcast:  newBroadcaster(logger),
	}
	s.rehydrate()
	return s
}

// CreateConversation inserts a new empty conversation, makes it current, and
// returns its id.
func (s *Store) CreateConversation() string {
	s.mu.Lock()
	id := s.createLocked()
	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
	return id
}

// SwitchConversation makes id current and moves it to the front of the MRU
// order. An unknown id is silently materialized as an empty conversation so
// callers can pass externally remembered ids safely.
func (s *Store) SwitchConversation(id string) {
	s.mu.Lock()
	if _, ok := s.state.Conversations[id]; !ok {
		now := time.Now()
		s.state.Conversations[id] = &Conversation{
			ID:        id,
			Messages:  []Message{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	s.touchLocked(id)
	s.state.CurrentID = id
	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
}

// EnsureConversation returns the current conversation id, creating a new
// conversation first if none is current.
func (s *Store) EnsureConversation() string {
	s.mu.Lock()
	if id := s.state.CurrentID; id != "" {
		s.mu.Unlock()
		return id
	}
	id := s.createLocked()
	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
	return id
}

// AddMessage appends a message to the current conversation, creating one if
// needed, and returns the fully populated message. The first user-role
// message of a conversation becomes its title, exactly once.
func (s *Store) AddMessage(role Role, content string) Message {
	s.mu.Lock()
	cid := s.state.CurrentID
	if cid == "" {
		cid = s.createLocked()
	}
	conv := s.state.Conversations[cid]

	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	conv.Messages = append(conv.Messages, msg)
	if conv.Title == nil && role == RoleUser {
		title := content
		conv.Title = &title
	}
	conv.UpdatedAt = msg.CreatedAt
	s.touchLocked(cid)

	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
	return msg
}

// ReplaceMessages wholesale-replaces the current conversation's message list.
// Used to seed setup messages before any user interaction. The title rule
// still applies to the first replacement message; an existing title is never
// overwritten. With no current conversation this is a no-op.
func (s *Store) ReplaceMessages(msgs []Message) {
	s.mu.Lock()
	cid := s.state.CurrentID
	if cid == "" {
		s.mu.Unlock()
		return
	}
	now := time.Now()
	conv, ok := s.state.Conversations[cid]
	if !ok {
		// Stale pointer, should not happen. Synthesize the target.
		conv = &Conversation{ID: cid, CreatedAt: now}
		s.state.Conversations[cid] = conv
		s.touchLocked(cid)
	}
	conv.Messages = append([]Message(nil), msgs...)
	if conv.Title == nil && len(msgs) > 0 && msgs[0].Role == RoleUser {
		title := msgs[0].Content
		conv.Title = &title
	}
	conv.UpdatedAt = now

	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
}

// ResetCurrent empties the current conversation: messages cleared, title back
// to absent, id and createdAt untouched. No-op without a current conversation.
func (s *Store) ResetCurrent() {
	s.mu.Lock()
	conv, ok := s.state.Conversations[s.state.CurrentID]
	if !ok {
		s.mu.Unlock()
		return
	}
	conv.Title = nil
	conv.Messages = []Message{}
	conv.UpdatedAt = time.Now()

	snap := s.snapshotLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.bcast.publish(snap)
}

// GetCurrent returns a copy of the current conversation, if any.
func (s *Store) GetCurrent() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.state.Conversations[s.state.CurrentID]
	if !ok {
		return Conversation{}, false
	}
	return conv.clone(), true
}

// Messages returns a copy of the current conversation's message list.
func (s *Store) Messages() []Message {
	conv, ok := s.GetCurrent()
	if !ok {
		return nil
	}
	return conv.Messages
}

// Index returns the history view: one summary per conversation in MRU order,
// with placeholders for untitled or empty conversations.
func (s *Store) Index() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked()
}

// Clear drops every conversation, the order, and the current pointer, and
// clears the persisted slot.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = newState()
	snap := s.snapshotLocked()
	if s.slot != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.slot.Clear(ctx); err != nil {
			s.logger.Error("failed to clear slot", "error", err)
		}
		cancel()
	}
	s.mu.Unlock()

	s.bcast.publish(snap)
}

// Subscribe registers for snapshots published after each mutation. The
// returned channel receives the snapshot current at subscription time first.
// The subscription is removed when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) (<-chan Snapshot, string) {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	return s.bcast.subscribe(ctx, snap)
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(id string) {
	s.bcast.unsubscribe(id)
}

// Close shuts down the subscriber fan-out.
func (s *Store) Close() {
	s.bcast.close()
}

func (s *Store) createLocked() string {
	id := uuid.New().String()
	now := time.Now()
	s.state.Conversations[id] = &Conversation{
		ID:        id,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.touchLocked(id)
	s.state.CurrentID = id
	return id
}

// touchLocked moves id to the front of the MRU order, deduplicating.
func (s *Store) touchLocked(id string) {
	order := make([]string, 0, len(s.state.Order)+1)
	order = append(order, id)
	for _, x := range s.state.Order {
		if x != id {
			order = append(order, x)
		}
	}
	s.state.Order = order
}

func (s *Store) indexLocked() []Summary {
	out := make([]Summary, 0, len(s.state.Order))
	for _, id := range s.state.Order {
		conv, ok := s.state.Conversations[id]
		if !ok {
			continue
		}
		sum := Summary{
			ID:        id,
			Title:     placeholderTitle,
			Preview:   placeholderPreview,
			UpdatedAt: conv.UpdatedAt,
		}
		if conv.Title != nil {
			sum.Title = *conv.Title
		}
		if len(conv.Messages) > 0 {
			sum.Preview = conv.Messages[0].Content
		}
		out = append(out, sum)
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		CurrentID: s.state.CurrentID,
		Index:     s.indexLocked(),
	}
	if conv, ok := s.state.Conversations[s.state.CurrentID]; ok {
		snap.Messages = append([]Message(nil), conv.Messages...)
	}
	return snap
}

// persistLocked serializes the root into the slot. Failures are logged only:
// the store keeps operating in memory.
func (s *Store) persistLocked() {
	if s.slot == nil {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error("failed to serialize state", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.slot.Save(ctx, data); err != nil {
		s.logger.Error("failed to persist state", "error", err)
	}
}

func (s *Store) rehydrate() {
	if s.slot == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	data, err := s.slot.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load persisted state, starting empty", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("failed to decode persisted state, starting empty", "error", err)
		return
	}
	if st.Conversations == nil {
		st.Conversations = make(map[string]*Conversation)
	}
	s.state = st
	s.logger.Debug("state rehydrated",
		"conversations", len(st.Conversations),
		"current_id", st.CurrentID)
}
