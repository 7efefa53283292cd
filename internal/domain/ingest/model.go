package ingest

// RawRow is one line of an inventory feed before any interpretation. All
// fields are kept as strings because the upstream export mixes numeric and
// textual cells freely; the reconciler owns the parsing rules.
type RawRow struct {
	LotID      string `json:"lote"`
	LabName    string `json:"laboratorio"`
	Expiration string `json:"caducidad"`
	ItemID     string `json:"clave"`
	ItemName   string `json:"medicamento"`
	Quantity   string `json:"existencia"`
}

// RowError records why a single feed row was not imported.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes a reconciliation batch.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}
