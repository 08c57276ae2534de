// Package repository wraps gorm queries for each table behind small interfaces.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// notFound maps gorm's missing-row error to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE wildcards
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}

// countRow is the scan target for grouped COUNT queries
type countRow struct {
	RefID string
	Count int
}

func toCountMap(rows []countRow) map[string]int {
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.RefID] = row.Count
	}
	return out
}
