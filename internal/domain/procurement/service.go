package procurement

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medstock/medstock/internal/domain/catalog"
	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/db"
)

// Stock at or below this level raises a low-stock alert on watched items.
const lowStockThreshold = 20

type Service struct {
	critical    CriticalRepository
	suggestions SuggestionRepository
	items       catalog.ItemRepository
	tx          db.TxRunner
	now         func() time.Time
}

func NewService(critical CriticalRepository, suggestions SuggestionRepository, items catalog.ItemRepository, tx db.TxRunner) *Service {
	return &Service{
		critical:    critical,
		suggestions: suggestions,
		items:       items,
		tx:          tx,
		now:         time.Now,
	}
}

func (s *Service) AddCritical(ctx context.Context, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return shared.Validationf("id_insumo is required")
	}
	exists, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NotFoundf("item %s not found", itemID)
	}
	return s.critical.Add(ctx, itemID)
}

func (s *Service) RemoveCritical(ctx context.Context, itemID string) error {
	return s.critical.Remove(ctx, itemID)
}

// Alerts lists the watch list with low-stock and expired-lot flags set
// against the current clock.
func (s *Service) Alerts(ctx context.Context) ([]*CriticalItem, error) {
	items, err := s.critical.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, item := range items {
		item.LowStock = item.Quantity < lowStockThreshold
		item.Expired = item.ExpirationDate != nil && item.ExpirationDate.Before(now)
	}
	return items, nil
}

func (s *Service) CreateSuggestion(ctx context.Context, name string, quantity int) (*Suggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validationf("nombre is required")
	}
	if quantity <= 0 {
		return nil, shared.Validationf("cantidad must be positive")
	}
	sg := &Suggestion{ItemName: name, Quantity: quantity, CreatedAt: s.now()}
	id, err := s.suggestions.Insert(ctx, sg)
	if err != nil {
		return nil, err
	}
	sg.ID = id
	return sg, nil
}

func (s *Service) ListSuggestions(ctx context.Context) ([]*Suggestion, error) {
	return s.suggestions.List(ctx)
}

// ArchiveSuggestions moves every open suggestion into the purchase history
// in one transaction and returns how many were archived.
func (s *Service) ArchiveSuggestions(ctx context.Context) (int, error) {
	var archived int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.suggestions.CopyAllToHistory(ctx, s.now())
		if err != nil {
			return err
		}
		archived = n
		return s.suggestions.DeleteAll(ctx)
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int("archived", archived).Msg("suggestions archived")
	return archived, nil
}

func (s *Service) History(ctx context.Context) ([]*HistoryEntry, error) {
	return s.suggestions.History(ctx)
}
