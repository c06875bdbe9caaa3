// Package claims loads the daily claim counts per insurer that feed the dashboard.
package claims

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Record is one row of the daily claims sheet.
type Record struct {
	UniqueKey   string `json:"unique_key"`
	Date        string `json:"date"` // YYYY-MM-DD
	Insurer     string `json:"insurer"`
	ClaimsCount int    `json:"claims_count"`
}

// Source produces the full claims snapshot.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Record, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]Record, error) {
	return f(ctx)
}

// Empty is the source used when no spreadsheet is configured.
var Empty Source = SourceFunc(func(context.Context) ([]Record, error) {
	return []Record{}, nil
})

// ParseRows converts sheet rows to records. The first row is a header and is
// skipped; missing cells become empty strings and an unparsable count is 0.
func ParseRows(rows [][]string) []Record {
	if len(rows) < 2 {
		return []Record{}
	}
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		count, err := strconv.Atoi(strings.TrimSpace(cell(row, 3)))
		if err != nil {
			count = 0
		}
		records = append(records, Record{
			UniqueKey:   cell(row, 0),
			Date:        cell(row, 1),
			Insurer:     cell(row, 2),
			ClaimsCount: count,
		})
	}
	return records
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ETag returns a strong entity tag for a snapshot.
func ETag(records []Record) (string, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := xxh3.Hash128(payload).Bytes()
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}
