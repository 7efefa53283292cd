package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column headers of the inventory export. Matching is exact after trimming,
// since the export tool emits them verbatim.
const (
	colLot      = "Lote"
	colLab      = "Laboratorio"
	colExpiry   = "Caducidad"
	colItemID   = "Clave CLIENTE"
	colItemName = "Medicamento"
	colQuantity = "Existencia total"
)

var requiredColumns = []string{colLot, colLab, colExpiry, colItemID, colItemName, colQuantity}

// DecodeCSVFeed reads the tabular inventory feed into raw rows. The first
// record is a header naming the required columns in any order; extra columns
// are ignored. A UTF-8 BOM before the header is stripped.
func DecodeCSVFeed(r io.Reader) ([]RawRow, error) {
	buf := bufio.NewReader(r)
	if lead, err := buf.Peek(3); err == nil && len(lead) == 3 &&
		lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("feed is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read feed header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("feed header missing column %q", col)
		}
	}

	cell := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feed row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, RawRow{
			LotID:      cell(record, colLot),
			LabName:    cell(record, colLab),
			Expiration: cell(record, colExpiry),
			ItemID:     cell(record, colItemID),
			ItemName:   cell(record, colItemName),
			Quantity:   cell(record, colQuantity),
		})
	}
	return rows, nil
}
