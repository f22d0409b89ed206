package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/storage"
)

// ErrNotFound is returned when an operation needs an existing message.
var ErrNotFound = errors.New("message not found")

// Archive stores every generated message in one id-keyed map blob.
// Read-modify-write cycles are serialized within the process; writers in
// other processes race with last-write-wins semantics.
type Archive struct {
	kv storage.Provider
	mu sync.Mutex
}

func New(kv storage.Provider) *Archive {
	return &Archive{kv: kv}
}

// ArchiveMessage inserts or fully replaces the entry for msg.ID.
func (a *Archive) ArchiveMessage(ctx context.Context, msg models.StoredMessage) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	all, err := a.read(ctx)
	if err != nil {
		return err
	}
	all[msg.ID] = msg
	return a.write(ctx, all)
}

// GetMessageByID returns the stored message, or nil when there is none.
func (a *Archive) GetMessageByID(ctx context.Context, id string) (*models.StoredMessage, error) {
	all, err := a.read(ctx)
	if err != nil {
		return nil, err
	}
	msg, ok := all[id]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

// UpdateReflection overwrites the reflection of an existing entry, keeping
// every other field.
func (a *Archive) UpdateReflection(ctx context.Context, id, reflection string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	all, err := a.read(ctx)
	if err != nil {
		return err
	}
	msg, ok := all[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	msg.Reflection = reflection
	all[id] = msg
	return a.write(ctx, all)
}

// List returns every message, newest first.
func (a *Archive) List(ctx context.Context) ([]models.StoredMessage, error) {
	all, err := a.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.StoredMessage, 0, len(all))
	for _, m := range all {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

func (a *Archive) read(ctx context.Context) (map[string]models.StoredMessage, error) {
	raw, ok, err := a.kv.Get(ctx, constants.ArchiveStorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	all := make(map[string]models.StoredMessage)
	if !ok || len(raw) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return all, nil
}

func (a *Archive) write(ctx context.Context, all map[string]models.StoredMessage) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := a.kv.Set(ctx, constants.ArchiveStorageKey, raw); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	return nil
}
