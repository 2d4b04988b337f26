package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// OperationIDSize is the width of an operation identifier in bytes.
const OperationIDSize = 4

// OperationID is the compact key an operation is dispatched under. It
// is derived from the canonical signature, never assigned. Two distinct
// signatures can in principle derive the same identifier; the registry
// treats that as an advisory condition, not an error.
type OperationID [OperationIDSize]byte

// DeriveOperationID computes the identifier for a signature: the first
// four bytes of the SHA-256 digest of its canonical form.
func DeriveOperationID(signature string) OperationID {
	var id OperationID
	sum := sha256.Sum256([]byte(CanonicalSignature(signature)))
	copy(id[:], sum[:OperationIDSize])
	return id
}

// CanonicalSignature strips all whitespace from a signature, so
// "transfer(address, uint256)" and "transfer(address,uint256)" derive
// the same identifier.
func CanonicalSignature(signature string) string {
	return strings.Join(strings.Fields(signature), "")
}

// ParseOperationID parses a hex-encoded identifier, with or without a
// leading "0x" prefix. Exactly four bytes are required.
func ParseOperationID(s string) (OperationID, error) {
	var id OperationID
	raw := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return id, fmt.Errorf("parse operation id %q: %w", s, err)
	}
	if len(b) != OperationIDSize {
		return id, fmt.Errorf("parse operation id %q: expected %d bytes, got %d", s, OperationIDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the 0x-prefixed hex encoding of the identifier.
func (id OperationID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id OperationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *OperationID) UnmarshalText(text []byte) error {
	parsed, err := ParseOperationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
