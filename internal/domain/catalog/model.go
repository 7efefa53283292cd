package catalog

import "time"

// Item is a stock-keeping unit. Quantity is the single source of truth for
// availability and is only ever mutated through the quantity-adjust
// repository operations, never overwritten after the initial insert.
type Item struct {
	ID           string `db:"id_insumo" json:"id_insumo"`
	Name         string `db:"nombre" json:"nombre"`
	Presentation string `db:"presentacion" json:"presentacion"`
	Quantity     int    `db:"cantidad" json:"cantidad"`
	LotID        string `db:"id_lote" json:"id_lote"`
	LabID        int64  `db:"id_laboratorio" json:"id_laboratorio"`
}

// ItemWithLot is the listing view of an item joined with its lot dates.
type ItemWithLot struct {
	Item
	ReceivedDate   *time.Time `json:"fecha_recepcion,omitempty"`
	ExpirationDate *time.Time `json:"fecha_vencimiento,omitempty"`
}

// ItemDetail is the availability view consulted when composing a request.
type ItemDetail struct {
	Quantity       int        `json:"cantidad"`
	ExpirationDate *time.Time `json:"fecha_vencimiento,omitempty"`
}

// Lot is a manufactured batch sharing one expiration date. The received date
// is set once at insert; re-ingesting the same lot id only corrects the
// expiration date.
type Lot struct {
	ID             string    `db:"id_lote" json:"id_lote"`
	ReceivedDate   time.Time `db:"fecha_recepcion" json:"fecha_recepcion"`
	ExpirationDate time.Time `db:"fecha_vencimiento" json:"fecha_vencimiento"`
}

// Lab is a supplier laboratory, unique by name.
type Lab struct {
	ID   int64  `db:"id_laboratorio" json:"id_laboratorio"`
	Name string `db:"nombre" json:"nombre"`
}
