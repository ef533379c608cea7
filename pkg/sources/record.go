package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/popdex/popdex/pkg/errors"
)

// PriceSignal is an optional price observation attached to a record.
type PriceSignal struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Record is the typed output shape every adapter must produce. Only
// Name and Source are required; everything else is optional.
type Record struct {
	Name       string       `json:"name"`
	Number     string       `json:"number,omitempty"`
	Series     string       `json:"series,omitempty"`
	ImageRef   string       `json:"image_ref,omitempty"`
	ExternalID string       `json:"external_id,omitempty"`
	Price      *PriceSignal `json:"price,omitempty"`
	Source     Label        `json:"source"`
}

// Validate checks the record's required fields.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.NewValidationError("name", r.Name, "cannot be empty")
	}
	if r.Source == "" {
		return errors.NewValidationError("source", r.Source, "cannot be empty")
	}
	if r.Number != "" && !allDigits(r.Number) {
		return errors.NewValidationError("number", r.Number, "must be a non-negative integer string")
	}
	return nil
}

// DecodeRecords strictly decodes a JSON array of records at the adapter
// boundary. Unknown fields and shape mismatches fail fast and
// explicitly, isolating adapter fragility from the core engine. The
// source label is stamped onto every decoded record.
func DecodeRecords(data []byte, source Label) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding %s records: %w", source, err)
	}

	for i := range records {
		records[i].Source = source
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d from %s: %w", i, source, err)
		}
	}
	return records, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
