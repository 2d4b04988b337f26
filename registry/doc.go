// Package registry implements the extension registry: named, described
// groups of operations that all resolve to a single handler reference,
// backed by a dispatch table whose mutations are gated by the upgrade
// guard.
//
// The registry maintains one hard invariant: every operation an
// extension advertises resolves, via the dispatch table, to that
// extension's handler. An identifier that would collide with another
// extension's binding may be deliberately omitted from the advertised
// list (the clash-omission policy); omitted identifiers are not the
// registry's to audit. Verify reports on the invariant for everything
// that is advertised.
package registry
