package types

// Operation is a single advertised entry point of an extension: the
// caller-derived identifier together with the human-readable signature
// it was derived from. The registry stores both verbatim and never
// re-derives one from the other.
type Operation struct {
	ID        OperationID `json:"id" yaml:"id"`
	Signature string      `json:"signature" yaml:"signature"`
}

// Extension is the unit of grouping and versioning in the registry: a
// named, described set of operations all serviced by a single handler
// reference.
//
// Operations is the extension's advertised list and is not required to
// be exhaustive: an identifier that would collide with another
// extension's binding may be deliberately omitted (the clash-omission
// policy), in which case the identifier stays resolvable under the
// other extension without being claimed here.
type Extension struct {
	// Name is the unique, case-sensitive registry key.
	Name string `json:"name" yaml:"name"`
	// DescriptorURI points at external human-readable metadata. The
	// registry treats it as an opaque string.
	DescriptorURI string `json:"descriptor_uri,omitempty" yaml:"descriptor_uri,omitempty"`
	// Handler is the reference every advertised operation resolves to.
	Handler HandlerRef `json:"handler" yaml:"handler"`
	// Operations is the ordered advertised list.
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Clone returns a deep copy. Registry reads hand out clones so callers
// can never mutate registry state through a returned record.
func (e Extension) Clone() Extension {
	out := e
	out.Operations = make([]Operation, len(e.Operations))
	copy(out.Operations, e.Operations)
	return out
}

// Validate checks the structural requirements for registration: a
// non-empty name, a non-sentinel handler, and no duplicate identifiers
// within the advertised list.
func (e Extension) Validate() error {
	if e.Name == "" {
		return NewError(ErrInvalidExtension, "extension name must not be empty")
	}
	if e.Handler.IsUnbound() {
		return NewError(ErrInvalidExtension, "extension handler must not be the unbound sentinel")
	}
	seen := make(map[OperationID]struct{}, len(e.Operations))
	for _, op := range e.Operations {
		if _, dup := seen[op.ID]; dup {
			return NewError(ErrInvalidExtension, "duplicate operation identifier "+op.ID.String()+" in extension "+e.Name)
		}
		seen[op.ID] = struct{}{}
	}
	return nil
}
