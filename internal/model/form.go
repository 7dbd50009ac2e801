package model

import (
	"encoding/json"
	"fmt"
)

// FieldType enumerates the closed set of value kinds a form answer may
// carry.  Free-form submissions from the form builder are deliberately
// not modelled as open dictionaries; every answer is tagged with one of
// these types so downstream code never guesses at a value's shape.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldChoice  FieldType = "choice"
	FieldBoolean FieldType = "boolean"
)

// FieldAnswer is one answered form field attached to a booking request.
// Exactly one of the value fields is meaningful, selected by Type.
type FieldAnswer struct {
	FieldID string    `json:"field_id"`
	Type    FieldType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Number  float64   `json:"number,omitempty"`
	Date    string    `json:"date,omitempty"`
	Choice  string    `json:"choice,omitempty"`
	Bool    bool      `json:"bool,omitempty"`
}

// Validate checks that the answer's tag is a known type and that the
// date variant carries a YYYY-MM-DD value.
func (a FieldAnswer) Validate() error {
	switch a.Type {
	case FieldText, FieldNumber, FieldChoice, FieldBoolean:
		return nil
	case FieldDate:
		if len(a.Date) != 10 {
			return fmt.Errorf("field %s: date must be YYYY-MM-DD", a.FieldID)
		}
		return nil
	default:
		return fmt.Errorf("field %s: unknown type %q", a.FieldID, a.Type)
	}
}

// EncodeAnswers serializes answers for storage in the bookings table.
// A nil or empty slice encodes to the empty string so the column stays
// NULL-friendly.
func EncodeAnswers(answers []FieldAnswer) (string, error) {
	if len(answers) == 0 {
		return "", nil
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeAnswers is the inverse of EncodeAnswers.
func DecodeAnswers(raw string) ([]FieldAnswer, error) {
	if raw == "" {
		return nil, nil
	}
	var answers []FieldAnswer
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
