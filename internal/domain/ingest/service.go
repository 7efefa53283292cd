package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medstock/medstock/internal/domain/catalog"
	"github.com/medstock/medstock/internal/platform/db"
)

// Service reconciles inventory feed batches into the catalog.
type Service struct {
	items catalog.ItemRepository
	lots  catalog.LotRepository
	labs  catalog.LabRepository
	tx    db.TxRunner
	now   func() time.Time
}

func NewService(items catalog.ItemRepository, lots catalog.LotRepository, labs catalog.LabRepository, tx db.TxRunner) *Service {
	return &Service{items: items, lots: lots, labs: labs, tx: tx, now: time.Now}
}

// Ingest applies a feed batch in a single transaction. Rows that fail
// validation are skipped and reported; any storage failure rolls back the
// whole batch so a partial feed never reaches the catalog.
func (s *Service) Ingest(ctx context.Context, rows []RawRow) (*Result, error) {
	res := &Result{}
	receivedAt := s.now()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i, row := range rows {
			// Row numbers are 1-based, header excluded.
			if err := s.ingestRow(ctx, &row, receivedAt); err != nil {
				if rejection, ok := err.(*rowRejection); ok {
					res.Skipped++
					res.Errors = append(res.Errors, RowError{Row: i + 1, Reason: rejection.reason})
					continue
				}
				return err
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("inventory feed reconciled")
	return res, nil
}

// rowRejection marks a per-row validation failure, as opposed to a storage
// error that must abort the batch.
type rowRejection struct {
	reason string
}

func (e *rowRejection) Error() string { return e.reason }

func rejectf(format string, args ...interface{}) *rowRejection {
	return &rowRejection{reason: fmt.Sprintf(format, args...)}
}

func (s *Service) ingestRow(ctx context.Context, row *RawRow, receivedAt time.Time) error {
	lotID := strings.TrimSpace(row.LotID)
	labName := strings.TrimSpace(row.LabName)
	itemID := strings.TrimSpace(row.ItemID)
	name := catalog.NormalizeItemName(row.ItemName)

	switch {
	case lotID == "":
		return rejectf("missing lot id")
	case labName == "":
		return rejectf("missing laboratory name")
	case itemID == "":
		return rejectf("missing item id")
	case name == "":
		return rejectf("missing item name")
	}

	expiration, err := ParseExpiration(row.Expiration)
	if err != nil {
		return rejectf("expiration: %v", err)
	}

	quantity := ParseQuantity(row.Quantity)

	labID, err := s.labs.FindOrCreate(ctx, catalog.NormalizeText(labName))
	if err != nil {
		return err
	}
	if err := s.lots.Upsert(ctx, &catalog.Lot{
		ID:             lotID,
		ReceivedDate:   receivedAt,
		ExpirationDate: expiration,
	}); err != nil {
		return err
	}

	exists, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return err
	}
	if exists {
		return s.items.AddQuantity(ctx, itemID, quantity)
	}
	return s.items.Insert(ctx, &catalog.Item{
		ID:           itemID,
		Name:         name,
		Presentation: catalog.ClassifyPresentation(name),
		Quantity:     quantity,
		LotID:        lotID,
		LabID:        labID,
	})
}
