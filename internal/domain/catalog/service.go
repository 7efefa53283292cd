package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/db"
)

// UpsertInput is a manual stock entry. When the item already exists only
// Quantity matters; for a new item the lot and naming fields are required.
type UpsertInput struct {
	ItemID         string `json:"id_insumo"`
	Name           string `json:"nombre"`
	Presentation   string `json:"presentacion"`
	Quantity       int    `json:"cantidad"`
	LotID          string `json:"id_lote"`
	LabName        string `json:"laboratorio"`
	ReceivedDate   string `json:"fecha_recepcion"`
	ExpirationDate string `json:"fecha_vencimiento"`
}

type UpdateStockInput struct {
	Quantity     int    `json:"cantidad"`
	Presentation string `json:"presentacion"`
}

type Service struct {
	items ItemRepository
	lots  LotRepository
	labs  LabRepository
	tx    db.TxRunner
}

func NewService(items ItemRepository, lots LotRepository, labs LabRepository, tx db.TxRunner) *Service {
	return &Service{items: items, lots: lots, labs: labs, tx: tx}
}

// Upsert records a manual stock entry. An existing item id accumulates the
// quantity onto current stock; an unknown id creates the item together with
// its lot and laboratory in one transaction.
func (s *Service) Upsert(ctx context.Context, in *UpsertInput) (*Item, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	if in.ItemID == "" {
		return nil, shared.Validationf("id_insumo is required")
	}
	if in.Quantity <= 0 {
		return nil, shared.Validationf("cantidad must be positive")
	}

	exists, err := s.items.Exists(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	if exists {
		if err := s.items.AddQuantity(ctx, in.ItemID, in.Quantity); err != nil {
			return nil, err
		}
		return s.items.GetByID(ctx, in.ItemID)
	}

	name := NormalizeItemName(in.Name)
	if name == "" {
		return nil, shared.Validationf("nombre is required for a new item")
	}
	in.LotID = strings.TrimSpace(in.LotID)
	if in.LotID == "" {
		return nil, shared.Validationf("id_lote is required for a new item")
	}
	received, err := parseDate(in.ReceivedDate)
	if err != nil {
		return nil, shared.Validationf("fecha_recepcion: %v", err)
	}
	expiration, err := parseDate(in.ExpirationDate)
	if err != nil {
		return nil, shared.Validationf("fecha_vencimiento: %v", err)
	}

	presentation := in.Presentation
	if presentation == "" {
		presentation = ClassifyPresentation(name)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		labID := int64(0)
		if lab := strings.TrimSpace(in.LabName); lab != "" {
			labID, err = s.labs.FindOrCreate(ctx, NormalizeText(lab))
			if err != nil {
				return err
			}
		}
		if err := s.lots.Upsert(ctx, &Lot{ID: in.LotID, ReceivedDate: received, ExpirationDate: expiration}); err != nil {
			return err
		}
		return s.items.Insert(ctx, &Item{
			ID:           in.ItemID,
			Name:         name,
			Presentation: presentation,
			Quantity:     in.Quantity,
			LotID:        in.LotID,
			LabID:        labID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("item_id", in.ItemID).Int("quantity", in.Quantity).Msg("item created")
	return s.items.GetByID(ctx, in.ItemID)
}

// UpdateStock overwrites the quantity of an existing item, optionally
// changing its presentation.
func (s *Service) UpdateStock(ctx context.Context, id string, in *UpdateStockInput) error {
	if in.Quantity < 0 {
		return shared.Validationf("cantidad must not be negative")
	}
	return s.items.UpdateStock(ctx, id, in.Quantity, in.Presentation)
}

func (s *Service) Remove(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) Detail(ctx context.Context, id string) (*ItemDetail, error) {
	return s.items.GetDetail(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*ItemWithLot, int, error) {
	return s.items.List(ctx, limit, offset)
}

const searchLimit = 10

func (s *Service) Search(ctx context.Context, q string) ([]*Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, shared.Validationf("query must not be empty")
	}
	return s.items.Search(ctx, q, searchLimit)
}

// Classify returns the presentation category a free-text description maps to.
func (s *Service) Classify(description string) string {
	return ClassifyPresentation(description)
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
