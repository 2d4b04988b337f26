// Package dispatch implements the two leaf components of the registry:
// the dispatch table mapping operation identifiers to handler
// references, and the upgrade guard that gates every mutation of that
// table.
//
// The table's write path is unexported. All binding and clearing flows
// through the Guard, which enforces the upgrade-safety protocol: an
// operation may never move directly from one handler to a different
// one. A genuine upgrade is two auditable steps, clear then bind.
package dispatch
