// Package types defines the core data model shared across dispatchd:
// operation identifiers, handler references, extension records, and the
// structured error type used by every mutation path.
package types
