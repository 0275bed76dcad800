// Package chatstore is the single source of truth for conversations. It owns
// the conversation set, the MRU ordering, and the active conversation pointer,
// persists the whole root after every mutation, and fans out snapshots to
// subscribers.
package chatstore

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single turn in a conversation. Immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is an ordered thread of messages with a stable id. Title is
// nil until the first user message arrives, then set exactly once to that
// message's content.
type Conversation struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Conversation) clone() Conversation {
	out := *c
	if c.Title != nil {
		t := *c.Title
		out.Title = &t
	}
	out.Messages = append([]Message(nil), c.Messages...)
	return out
}

// state is the store root. Order is most-recently-touched first with no
// duplicates and its entries always match the Conversations key set.
type state struct {
	Conversations map[string]*Conversation `json:"conversations"`
	Order         []string                 `json:"order"`
	CurrentID     string                   `json:"currentId"`
}

func newState() state {
	return state{Conversations: make(map[string]*Conversation)}
}

// Summary is one row of the history index.
type Summary struct {
	ID        string
	Title     string
	Preview   string
	UpdatedAt time.Time
}

// Snapshot is what subscribers receive after each mutation: the current
// conversation's messages plus the MRU-ordered conversation index.
type Snapshot struct {
	CurrentID string
	Messages  []Message
	Index     []Summary
}
