package models

import "context"

// KeyValueStore is a durable slot store keyed by string, the server-side counterpart of
// browser local storage.
type KeyValueStore interface {
	// Get returns the stored value or ErrSnapshotNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// SnapshotStore persists the ledger snapshot. Implementations never surface errors:
// Save logs failures and Load returns nil when nothing usable is stored.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot)
	Load(ctx context.Context) *Snapshot
}
