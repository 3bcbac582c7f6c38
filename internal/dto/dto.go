package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC3339 timestamps and plain calendar dates. Empty
// input yields nil.
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date", field)
}

// ParseMoney parses a decimal amount. Empty input yields zero.
func ParseMoney(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	return d, nil
}

var errEndBeforeStart = errors.New("end_date must not be before start_date")
