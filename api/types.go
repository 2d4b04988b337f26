package api

import "github.com/BaSui01/dispatchd/types"

// RegisterExtensionRequest is the body of POST /api/v1/extensions.
type RegisterExtensionRequest struct {
	Name          string             `json:"name"`
	DescriptorURI string             `json:"descriptor_uri,omitempty"`
	Handler       string             `json:"handler"`
	Operations    []OperationRequest `json:"operations,omitempty"`
}

// OperationRequest is one advertised operation in a registration
// request. ID is optional: when empty the service derives it from the
// signature before calling the registry, acting as the caller-side
// derivation the registry itself never performs.
type OperationRequest struct {
	ID        string `json:"id,omitempty"`
	Signature string `json:"signature"`
}

// ToExtension converts the request into a registry extension.
func (r RegisterExtensionRequest) ToExtension() (types.Extension, error) {
	handler, err := types.ParseHandlerRef(r.Handler)
	if err != nil {
		return types.Extension{}, types.NewError(types.ErrInvalidRequest, "invalid handler reference").WithCause(err)
	}

	ops := make([]types.Operation, 0, len(r.Operations))
	for _, op := range r.Operations {
		var id types.OperationID
		if op.ID != "" {
			id, err = types.ParseOperationID(op.ID)
			if err != nil {
				return types.Extension{}, types.NewError(types.ErrInvalidRequest, "invalid operation id").WithCause(err)
			}
		} else {
			id = types.DeriveOperationID(op.Signature)
		}
		ops = append(ops, types.Operation{ID: id, Signature: op.Signature})
	}

	return types.Extension{
		Name:          r.Name,
		DescriptorURI: r.DescriptorURI,
		Handler:       handler,
		Operations:    ops,
	}, nil
}

// ResolveResponse is the body of GET /api/v1/resolve.
type ResolveResponse struct {
	Operation types.OperationID `json:"operation"`
	Handler   types.HandlerRef  `json:"handler"`
	Bound     bool              `json:"bound"`
}

// InventoryResponse is the body of GET /api/v1/extensions.
type InventoryResponse struct {
	Extensions []types.Extension `json:"extensions"`
	Count      int               `json:"count"`
}
