package chatstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestSubscribeReceivesInitialSnapshot(t *testing.T) {
	s := New(nil, nil)
	s.CreateConversation()
	s.AddMessage(RoleUser, "already here")

	ch, id := s.Subscribe(context.Background())
	defer s.Unsubscribe(id)

	snap := recvSnapshot(t, ch)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "already here", snap.Messages[0].Content)
	require.Len(t, snap.Index, 1)
}

func TestSubscribeReceivesMutations(t *testing.T) {
	s := New(nil, nil)

	ch, id := s.Subscribe(context.Background())
	defer s.Unsubscribe(id)

	recvSnapshot(t, ch) // initial, empty

	s.CreateConversation()
	snap := recvSnapshot(t, ch)
	assert.NotEmpty(t, snap.CurrentID)

	s.AddMessage(RoleUser, "ping")
	snap = recvSnapshot(t, ch)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "ping", snap.Messages[0].Content)
	assert.Equal(t, "ping", snap.Index[0].Title)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := New(nil, nil)

	ch, id := s.Subscribe(context.Background())
	recvSnapshot(t, ch)
	s.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic.
	s.CreateConversation()
}

func TestSubscribeContextCancellation(t *testing.T) {
	s := New(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := s.Subscribe(ctx)
	recvSnapshot(t, ch)

	cancel()

	// Channel closes once the cleanup goroutine runs.
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after context cancellation")
	}
}

func TestSlowSubscriberDoesNotBlockMutations(t *testing.T) {
	s := New(nil, nil)

	_, id := s.Subscribe(context.Background())
	defer s.Unsubscribe(id)

	// Never read from the subscription channel; mutations must still complete promptly.
	for i := 0; i < subscriberBufferSize*2; i++ {
		s.AddMessage(RoleUser, "flood")
	}

	conv, ok := s.GetCurrent()
	require.True(t, ok)
	assert.Len(t, conv.Messages, subscriberBufferSize*2)
}
