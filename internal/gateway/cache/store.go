package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one cached read result. The payload is the JSON encoding of the
// value so every lookup hands out an independent snapshot.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"storedAt"`
}

// Store is the key/value map behind the gateway's read cache. Freshness is
// decided by the gateway from StoredAt; backends only persist entries.
type Store interface {
	Lookup(ctx context.Context, key string) (Entry, bool, error)
	Store(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

func cloneEntry(in Entry) Entry {
	out := Entry{StoredAt: in.StoredAt}
	if in.Payload != nil {
		out.Payload = make(json.RawMessage, len(in.Payload))
		copy(out.Payload, in.Payload)
	}
	return out
}
