package chatstore

import "context"

// SlotName is the fixed key under which the store root is persisted.
const SlotName = "chat-store"

// Slot is a named durable key-value slot holding the serialized store root.
// Load returns (nil, nil) when the slot has never been written.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}
