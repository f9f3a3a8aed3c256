package parser

import (
	"encoding/json"
	"fmt"

	"lir/pkg/schema"
)

// ParseWarning represents a non-fatal issue encountered while decoding a payload.
type ParseWarning struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ParseResult contains the decoded records alongside any warnings.
type ParseResult struct {
	Records  []schema.RawRecord `json:"records"`
	Warnings []ParseWarning     `json:"warnings"`
}

// Envelope keys under which sources wrap their record arrays, checked in order.
// Directory-style APIs return {"users": [...]}, vendor group APIs {"members": [...]},
// the license ledger a bare array.
var envelopeKeys = []string{"users", "members", "licenses", "items", "records", "data"}

// Parse decodes a raw source payload into loose records. The payload may be a
// bare JSON array or an object wrapping one (see envelopeKeys).
func Parse(data []byte) ([]schema.RawRecord, error) {
	result, err := ParseWithWarnings(data)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// ParseWithWarnings decodes a raw source payload and returns both records and
// any warnings. Elements that are not JSON objects are skipped with a warning,
// never an error; the pipeline must finish with whatever is valid.
func ParseWithWarnings(data []byte) (*ParseResult, error) {
	decoded, _, err := DecodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("payload decoding failed: %w", err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	elements, err := recordArray(decoded)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Records: make([]schema.RawRecord, 0, len(elements))}
	for i, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			result.Warnings = append(result.Warnings, ParseWarning{
				Index:   i,
				Message: fmt.Sprintf("element %d is not an object, skipped", i),
			})
			continue
		}
		result.Records = append(result.Records, schema.RawRecord(obj))
	}
	return result, nil
}

// recordArray locates the record array inside a decoded payload: either the
// payload itself, or the first recognized envelope field, or failing that
// the first array-valued field of the wrapping object.
func recordArray(data []byte) ([]any, error) {
	var asArray []any
	if err := json.Unmarshal(data, &asArray); err == nil {
		return asArray, nil
	}

	var asObject map[string]any
	if err := json.Unmarshal(data, &asObject); err != nil {
		return nil, fmt.Errorf("payload is neither a JSON array nor an object: %w", err)
	}
	for _, key := range envelopeKeys {
		if arr, ok := asObject[key].([]any); ok {
			return arr, nil
		}
	}
	for _, v := range asObject {
		if arr, ok := v.([]any); ok {
			return arr, nil
		}
	}
	return nil, fmt.Errorf("payload object contains no record array")
}
