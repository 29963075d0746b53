package models

import (
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-day format shared with the record service.
	DateLayout = "2006-01-02"
	// MonthLayout is the month filter format shared with the record service.
	MonthLayout = "2006-01"
)

// RateGroup names one independently editable sub-field group of a RateEntry.
type RateGroup string

const (
	RateGroupProposal RateGroup = "proposal"
	RateGroupActual   RateGroup = "actual"
	RateGroupPiece    RateGroup = "piece"
)

// RateGroups lists the editable groups in display order.
var RateGroups = []RateGroup{RateGroupProposal, RateGroupActual, RateGroupPiece}

// ParseRateGroup validates a group name coming from a form or query string.
func ParseRateGroup(value string) (RateGroup, bool) {
	for _, g := range RateGroups {
		if string(g) == strings.ToLower(strings.TrimSpace(value)) {
			return g, true
		}
	}
	return "", false
}

// BoilerPair holds the big and small boiler values of one price or quantity.
type BoilerPair struct {
	Big   float64
	Small float64
}

// RateEntry is one customer's row of a day's price record.
type RateEntry struct {
	CustomerName string
	Proposal     BoilerPair
	Actual       BoilerPair
	Piece        BoilerPair
}

// Pair returns the values of the requested group.
func (e RateEntry) Pair(group RateGroup) BoilerPair {
	switch group {
	case RateGroupActual:
		return e.Actual
	case RateGroupPiece:
		return e.Piece
	default:
		return e.Proposal
	}
}

// PriceRecord is the full price sheet of one calendar day. CustomerName is unique
// within Entries.
type PriceRecord struct {
	Date    string
	Entries []RateEntry
}

// NormalizeDate trims timestamps such as 2025-01-05T00:00:00.000Z down to the
// calendar day.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	return value
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DateLayout, NormalizeDate(value))
}

// ParseMonth validates a YYYY-MM string.
func ParseMonth(value string) (time.Time, error) {
	return time.Parse(MonthLayout, strings.TrimSpace(value))
}
