package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is a persisted point-in-time snapshot of category totals.
type HistoryRecord struct {
	ID                int64           `json:"id,omitempty"`
	RecordDate        Timestamp       `json:"recordDate"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
	NasdaqTotal       decimal.Decimal `json:"nasdaqTotal"`
	SpTotal           decimal.Decimal `json:"spTotal"`
	ConservativeTotal decimal.Decimal `json:"conservativeTotal"`
	CashTotal         decimal.Decimal `json:"cashTotal"`
}

// Timestamp decodes the record dates the asset service emits: local
// date-times without a zone, RFC 3339 or a bare date.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp tries each supported layout in turn.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unsupported timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("record date: %w", err)
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// Chronological returns a copy of records in reverse order. The service lists
// newest first; charts want oldest first.
func Chronological(records []HistoryRecord) []HistoryRecord {
	out := make([]HistoryRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
