package procurement

import (
	"context"
	"time"
)

type CriticalRepository interface {
	// Add registers an item on the watch list. Adding an already watched
	// item is a no-op.
	Add(ctx context.Context, itemID string) error
	Remove(ctx context.Context, itemID string) error
	// List returns watched items joined with stock and lot expiration.
	List(ctx context.Context) ([]*CriticalItem, error)
}

type SuggestionRepository interface {
	Insert(ctx context.Context, s *Suggestion) (int64, error)
	List(ctx context.Context) ([]*Suggestion, error)
	// CopyAllToHistory snapshots every open suggestion into the purchase
	// history, returning how many were copied.
	CopyAllToHistory(ctx context.Context, archivedAt time.Time) (int, error)
	DeleteAll(ctx context.Context) error
	History(ctx context.Context) ([]*HistoryEntry, error)
}
