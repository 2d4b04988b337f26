// Package snapshot mirrors the extension inventory into Redis so that
// external systems can read the current ABI without querying the
// service. The mirror is write-through and advisory: the in-memory
// registry remains the source of truth, and a failed mirror write
// never rolls back a committed mutation.
// This package is internal and should not be imported by external projects.
package snapshot
