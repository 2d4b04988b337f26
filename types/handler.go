package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HandlerRefSize is the width of a handler reference in bytes.
const HandlerRefSize = 20

// HandlerRef is an opaque reference to the code implementing one or
// more operations. The zero value is the distinguished unbound
// sentinel: "no handler assigned". The registry never interprets the
// bytes; they are an address in whatever execution environment the
// embedding system forwards calls into.
type HandlerRef [HandlerRefSize]byte

// UnboundHandler is the unbound sentinel.
var UnboundHandler HandlerRef

// ParseHandlerRef parses a hex-encoded handler reference, with or
// without a leading "0x" prefix. Short input is left-padded with
// zeroes, so "0x01" parses to the reference ending in byte 0x01.
func ParseHandlerRef(s string) (HandlerRef, error) {
	var ref HandlerRef
	raw := strings.TrimPrefix(s, "0x")
	if len(raw)%2 == 1 {
		raw = "0" + raw
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return ref, fmt.Errorf("parse handler ref %q: %w", s, err)
	}
	if len(b) > HandlerRefSize {
		return ref, fmt.Errorf("parse handler ref %q: expected at most %d bytes, got %d", s, HandlerRefSize, len(b))
	}
	copy(ref[HandlerRefSize-len(b):], b)
	return ref, nil
}

// IsUnbound reports whether the reference is the unbound sentinel.
func (r HandlerRef) IsUnbound() bool {
	return r == UnboundHandler
}

// String returns the 0x-prefixed hex encoding of the reference.
func (r HandlerRef) String() string {
	return "0x" + hex.EncodeToString(r[:])
}

// MarshalText implements encoding.TextMarshaler.
func (r HandlerRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *HandlerRef) UnmarshalText(text []byte) error {
	parsed, err := ParseHandlerRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
