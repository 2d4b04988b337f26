package registry

import "github.com/BaSui01/dispatchd/types"

// ConsistencyEntry records the audit result for a single advertised
// (operation, extension) pair.
type ConsistencyEntry struct {
	Extension string            `json:"extension"`
	Operation types.OperationID `json:"operation"`
	Signature string            `json:"signature"`
	Want      types.HandlerRef  `json:"want"`
	Got       types.HandlerRef  `json:"got"`
	Match     bool              `json:"match"`
}

// ConsistencyReport is the result of a full dispatch-consistency audit.
type ConsistencyReport struct {
	Consistent bool               `json:"consistent"`
	Entries    []ConsistencyEntry `json:"entries"`
	Mismatches int                `json:"mismatches"`
}

// Collision describes a single advertised identifier claimed by more
// than one distinct signature. Collisions are a residual risk of the
// fixed-width derivation, reported as an advisory condition; they
// never block a mutation.
type Collision struct {
	Operation types.OperationID `json:"operation"`
	Claims    []CollisionClaim  `json:"claims"`
}

// CollisionClaim is one extension's claim on a colliding identifier.
type CollisionClaim struct {
	Extension string           `json:"extension"`
	Signature string           `json:"signature"`
	Handler   types.HandlerRef `json:"handler"`
}

// Verify audits the consistency contract: for every advertised
// (op, extension) pair, the dispatch table must point at that
// extension's handler. Read-only.
func (r *InMemoryRegistry) Verify() ConsistencyReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := ConsistencyReport{Consistent: true}
	for _, name := range r.order {
		ext := r.extensions[name]
		for _, op := range ext.Operations {
			got := r.table.Resolve(op.ID)
			match := got == ext.Handler
			if !match {
				report.Consistent = false
				report.Mismatches++
			}
			report.Entries = append(report.Entries, ConsistencyEntry{
				Extension: name,
				Operation: op.ID,
				Signature: op.Signature,
				Want:      ext.Handler,
				Got:       got,
				Match:     match,
			})
		}
	}
	return report
}

// FindCollisions reports advertised identifiers that more than one
// distinct signature maps to across the inventory. The same signature
// advertised by two extensions is not a collision, only two different
// signatures deriving the same identifier.
func (r *InMemoryRegistry) FindCollisions() []Collision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claims := make(map[types.OperationID][]CollisionClaim)
	for _, name := range r.order {
		ext := r.extensions[name]
		for _, op := range ext.Operations {
			claims[op.ID] = append(claims[op.ID], CollisionClaim{
				Extension: name,
				Signature: types.CanonicalSignature(op.Signature),
				Handler:   ext.Handler,
			})
		}
	}

	var collisions []Collision
	for _, name := range r.order {
		ext := r.extensions[name]
		for _, op := range ext.Operations {
			cs := claims[op.ID]
			if cs == nil {
				continue // already reported
			}
			distinct := false
			for _, c := range cs[1:] {
				if c.Signature != cs[0].Signature {
					distinct = true
					break
				}
			}
			if distinct {
				collisions = append(collisions, Collision{Operation: op.ID, Claims: cs})
			}
			delete(claims, op.ID)
		}
	}
	return collisions
}
