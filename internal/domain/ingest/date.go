package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the day-zero of spreadsheet serial dates. The 1899-12-30
// origin absorbs the historical off-by-two of the 1900 date system, so
// serial 1 is 1899-12-31 and serial 45000 lands on 2023-03-15.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is 9999-12-31, the largest date a spreadsheet can hold.
const maxExcelSerial = 2958465

var expirationLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	time.RFC3339,
}

// ParseExpiration interprets the raw expiration cell: a whole-number string
// is an Excel serial day count, anything else must match one of the known
// date layouts. Serials outside [1, maxExcelSerial] are rejected.
func ParseExpiration(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty expiration")
	}

	if serial, err := strconv.Atoi(raw); err == nil {
		if serial < 1 || serial > maxExcelSerial {
			return time.Time{}, fmt.Errorf("serial date %d out of range", serial)
		}
		// AddDate, not a Duration multiply: day counts near the serial
		// ceiling overflow int64 nanoseconds.
		return excelEpoch.AddDate(0, 0, serial), nil
	}

	var lastErr error
	for _, layout := range expirationLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration %q: %w", raw, lastErr)
}

// ParseQuantity reads the stock cell, tolerating decimals and thousands
// separators. Unparseable cells count as zero, matching how the feed
// reports items that are temporarily out of stock.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
