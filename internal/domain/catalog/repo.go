package catalog

import "context"

type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*Item, error)
	GetDetail(ctx context.Context, id string) (*ItemDetail, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*ItemWithLot, int, error)
	Search(ctx context.Context, q string, limit int) ([]*Item, error)
	Insert(ctx context.Context, item *Item) error
	// AddQuantity accumulates delta onto the current stock.
	AddQuantity(ctx context.Context, id string, delta int) error
	// DeductQuantity decrements stock, floored at zero.
	DeductQuantity(ctx context.Context, id string, qty int) error
	UpdateStock(ctx context.Context, id string, quantity int, presentation string) error
	Delete(ctx context.Context, id string) error
}

type LotRepository interface {
	// Upsert inserts the lot, or on an existing id overwrites only the
	// expiration date.
	Upsert(ctx context.Context, lot *Lot) error
	GetByID(ctx context.Context, id string) (*Lot, error)
}

type LabRepository interface {
	// FindOrCreate resolves a lab by its natural key (name), creating it on
	// first sight, and returns the surrogate id.
	FindOrCreate(ctx context.Context, name string) (int64, error)
}
