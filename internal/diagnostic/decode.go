// Package diagnostic decodes the structured error output compilers write to
// stderr when run with --error-format=json.
//
// The wire format is a JSON array of records:
//
//	[{"id": "lex-invalid-char", "loc": "samples/error/01.lang:1:1"}]
//
// Decode checks shape only. How many records a fixture may produce is
// decided by the caller.
package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Diagnostic is one compiler-reported error.
type Diagnostic struct {
	// ID is the taxonomy code. Codes are an open set.
	ID string `json:"id"`

	// Location is "path:line:column" with 1-based line and column.
	Location string `json:"loc"`
}

// MalformedError means stderr was not a well-formed diagnostic array.
type MalformedError struct {
	Cause string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed diagnostic output: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("malformed diagnostic output: %s", e.Cause)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Decode parses a diagnostic array. Every element must be an object with
// string "id" and "loc" members; other members are ignored. Any violation
// is reported as *MalformedError.
func Decode(data []byte) ([]Diagnostic, error) {
	if !json.Valid(data) {
		// Unmarshal again only to recover the syntax error position.
		var v any
		err := json.Unmarshal(data, &v)
		return nil, &MalformedError{Cause: "invalid JSON", Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &MalformedError{Cause: "top-level value is not an array"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &MalformedError{Cause: "top-level value is not an array", Err: err}
	}

	diags := make([]Diagnostic, 0, len(elems))
	for i, raw := range elems {
		d, err := decodeRecord(raw)
		if err != nil {
			return nil, &MalformedError{Cause: fmt.Sprintf("element %d: %s", i, err)}
		}
		diags = append(diags, d)
	}
	return diags, nil
}

func decodeRecord(raw json.RawMessage) (Diagnostic, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Diagnostic{}, fmt.Errorf("not an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Diagnostic{}, fmt.Errorf("not an object")
	}

	id, err := stringField(fields, "id")
	if err != nil {
		return Diagnostic{}, err
	}
	loc, err := stringField(fields, "loc")
	if err != nil {
		return Diagnostic{}, err
	}
	return Diagnostic{ID: id, Location: loc}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("missing %q", name)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", fmt.Errorf("%q is not a string", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q is not a string", name)
	}
	return s, nil
}
