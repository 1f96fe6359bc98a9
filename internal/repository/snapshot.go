package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

// DefaultKey is the slot the snapshot is stored under.
const DefaultKey = "mannapay_data"

// EncodeSnapshot serializes a snapshot. Dates are written as RFC 3339 strings.
func EncodeSnapshot(snap models.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses a stored snapshot and revives its date fields.
// Amounts are accepted both as JSON numbers and as strings.
func DecodeSnapshot(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.SelectedCurrency != "" && !snap.SelectedCurrency.Valid() {
		return nil, fmt.Errorf("%w: selected currency %q", models.ErrUnsupportedCurrency, snap.SelectedCurrency)
	}
	return &snap, nil
}

// SnapshotRepository persists the ledger snapshot in one key-value slot.
// Failures are logged and never returned.
type SnapshotRepository struct {
	kv     models.KeyValueStore
	key    string
	logger *logger.Logger
}

func NewSnapshotRepository(kv models.KeyValueStore, key string, logger *logger.Logger) *SnapshotRepository {
	if key == "" {
		key = DefaultKey
	}
	return &SnapshotRepository{kv: kv, key: key, logger: logger.Named("snapshot")}
}

func (r *SnapshotRepository) Save(ctx context.Context, snap models.Snapshot) {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		r.logger.Errorw("failed to encode snapshot", "error", err)
		return
	}
	if err := r.kv.Put(ctx, r.key, data); err != nil {
		r.logger.Errorw("failed to save snapshot", "key", r.key, "error", err)
		return
	}
	r.logger.Debugw("snapshot saved", "key", r.key, "bytes", len(data))
}

func (r *SnapshotRepository) Load(ctx context.Context) *models.Snapshot {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, models.ErrSnapshotNotFound) {
		r.logger.Debugw("no saved snapshot", "key", r.key)
		return nil
	}
	if err != nil {
		r.logger.Errorw("failed to load snapshot", "key", r.key, "error", err)
		return nil
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		r.logger.Errorw("failed to parse saved snapshot", "key", r.key, "error", err)
		return nil
	}
	return snap
}

// Raw returns the stored bytes of the slot.
func (r *SnapshotRepository) Raw(ctx context.Context) ([]byte, error) {
	return r.kv.Get(ctx, r.key)
}

func (r *SnapshotRepository) Close() error {
	return r.kv.Close()
}
