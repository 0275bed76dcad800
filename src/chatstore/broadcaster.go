package chatstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// broadcaster fans out store snapshots to subscribers. Sends are
// non-blocking: snapshots are dropped for subscribers whose channels are
// full, since a later snapshot always supersedes an earlier one.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Snapshot
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	return &broadcaster{
		subscribers: make(map[string]chan Snapshot),
		logger:      logger,
	}
}

// subscribe registers a subscriber and returns its channel and id. The
// initial snapshot is queued before registration so new subscribers see the
// state current at subscription time. The subscription is removed
// automatically when ctx is cancelled.
func (b *broadcaster) subscribe(ctx context.Context, initial Snapshot) (<-chan Snapshot, string) {
	id := uuid.New().String()
	ch := make(chan Snapshot, subscriberBufferSize)
	ch <- initial

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", id)

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()

	return ch, id
}

// publish delivers snap to every subscriber. Sends stay under the read lock
// so a concurrent unsubscribe cannot close a channel mid-send.
func (b *broadcaster) publish(snap Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- snap:
		default:
			b.logger.Debug("dropped snapshot for slow subscriber")
		}
	}
}

func (b *broadcaster) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", id)
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
