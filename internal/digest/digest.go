// Package digest fingerprints run results so that repeated runs can be
// compared byte for byte.
//
// Values are serialised with encoding/json, rewritten into RFC 8785
// canonical form and NFC normalised before hashing. Two result sequences
// that differ only in map ordering, number spelling or Unicode composition
// produce the same fingerprint.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"golang.org/x/text/unicode/norm"
)

const prefix = "sha256:"

// Canonical returns the canonical JSON encoding of v.
func Canonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	canon, err := jsoncanonicalizer.Transform(bytes.TrimRight(buf.Bytes(), "\n"))
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	// Escapes and structural characters are ASCII, so normalising the whole
	// document only touches string contents.
	return norm.NFC.Bytes(canon), nil
}

// Sum returns "sha256:<hex>" over the canonical encoding of v.
func Sum(v any) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return prefix + hex.EncodeToString(sum[:]), nil
}
