package procurement

import "time"

// CriticalItem is a watched catalog item joined with its current stock and
// lot expiration. LowStock and Expired are computed at read time.
type CriticalItem struct {
	ItemID         string     `db:"id_insumo" json:"id_insumo"`
	ItemName       string     `db:"nombre" json:"nombre"`
	Quantity       int        `db:"cantidad" json:"cantidad"`
	ExpirationDate *time.Time `db:"fecha_vencimiento" json:"fecha_vencimiento,omitempty"`
	LowStock       bool       `json:"existencia_baja"`
	Expired        bool       `json:"lote_vencido"`
}

// Suggestion is a free-form purchase proposal awaiting review.
type Suggestion struct {
	ID        int64     `db:"id_sugerencia" json:"id_sugerencia"`
	ItemName  string    `db:"nombre" json:"nombre"`
	Quantity  int       `db:"cantidad" json:"cantidad"`
	CreatedAt time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}

// HistoryEntry is an archived suggestion.
type HistoryEntry struct {
	ID         int64     `db:"id_historico" json:"id_historico"`
	ItemName   string    `db:"nombre" json:"nombre"`
	Quantity   int       `db:"cantidad" json:"cantidad"`
	ArchivedAt time.Time `db:"fecha_archivo" json:"fecha_archivo"`
}
