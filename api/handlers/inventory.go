package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/api"
	"github.com/BaSui01/dispatchd/internal/metrics"
	"github.com/BaSui01/dispatchd/registry"
	"github.com/BaSui01/dispatchd/types"
)

// Mirror receives a copy of the inventory after each successful
// mutation. Failures are logged, never propagated: the in-memory
// registry is the source of truth.
type Mirror interface {
	Save(ctx context.Context, extensions []types.Extension) (string, error)
}

// InventoryHandler serves the extension inventory API.
type InventoryHandler struct {
	registry *registry.InMemoryRegistry
	metrics  *metrics.Collector
	mirror   Mirror
	logger   *zap.Logger
}

// NewInventoryHandler creates an inventory handler. metrics and mirror
// may be nil.
func NewInventoryHandler(reg *registry.InMemoryRegistry, collector *metrics.Collector, mirror Mirror, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{
		registry: reg,
		metrics:  collector,
		mirror:   mirror,
		logger:   logger.With(zap.String("component", "inventory_handler")),
	}
}

// HandleExtensions serves /api/v1/extensions: GET lists the inventory,
// POST registers a new extension.
func (h *InventoryHandler) HandleExtensions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleRegister(w, r)
	default:
		MethodNotAllowed(w, r)
	}
}

// HandleExtensionByName serves /api/v1/extensions/{name}: GET fetches
// one extension, DELETE removes it.
func (h *InventoryHandler) HandleExtensionByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/extensions/")
	if name == "" || strings.Contains(name, "/") {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "missing extension name"), h.logger)
		return
	}

	switch r.Method {
	case http.MethodGet:
		ext, ok := h.registry.Get(name)
		if !ok {
			WriteError(w, types.Errorf(types.ErrNotFound, "extension %s not registered", name), h.logger)
			return
		}
		WriteSuccess(w, ext)
	case http.MethodDelete:
		h.handleRemove(w, r, name)
	default:
		MethodNotAllowed(w, r)
	}
}

func (h *InventoryHandler) handleList(w http.ResponseWriter, _ *http.Request) {
	exts := h.registry.ListExtensions()
	WriteSuccess(w, api.InventoryResponse{Extensions: exts, Count: len(exts)})
}

func (h *InventoryHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterExtensionRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	ext, err := req.ToExtension()
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	err = h.registry.RegisterExtension(ext)
	h.recordMutation("register", err)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.mirrorInventory(r.Context())
	h.logger.Info("extension registered via API",
		zap.String("name", ext.Name),
		zap.Int("operations", len(ext.Operations)))
	WriteJSON(w, http.StatusCreated, Response{Success: true, Data: ext, Timestamp: time.Now()})
}

func (h *InventoryHandler) handleRemove(w http.ResponseWriter, r *http.Request, name string) {
	err := h.registry.RemoveExtension(name)
	h.recordMutation("remove", err)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.mirrorInventory(r.Context())
	h.logger.Info("extension removed via API", zap.String("name", name))
	WriteSuccess(w, map[string]string{"removed": name})
}

// HandleResolve serves GET /api/v1/resolve?op=0x...
func (h *InventoryHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	op, err := types.ParseOperationID(r.URL.Query().Get("op"))
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "invalid or missing op parameter").WithCause(err), h.logger)
		return
	}

	handler := h.registry.Resolve(op)
	if h.metrics != nil {
		h.metrics.RecordResolve(!handler.IsUnbound())
	}
	WriteSuccess(w, api.ResolveResponse{
		Operation: op,
		Handler:   handler,
		Bound:     !handler.IsUnbound(),
	})
}

// HandleVerify serves GET /api/v1/verify with the consistency report.
func (h *InventoryHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}

	report := h.registry.Verify()
	if h.metrics != nil {
		h.metrics.RecordVerify(report.Mismatches)
	}
	if !report.Consistent {
		h.logger.Warn("consistency audit found mismatches",
			zap.Int("mismatches", report.Mismatches))
	}
	WriteSuccess(w, report)
}

// HandleCollisions serves GET /api/v1/collisions with the advisory
// identifier-collision report.
func (h *InventoryHandler) HandleCollisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, r)
		return
	}
	collisions := h.registry.FindCollisions()
	WriteSuccess(w, map[string]interface{}{
		"collisions": collisions,
		"count":      len(collisions),
	})
}

func (h *InventoryHandler) recordMutation(mutation string, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordMutation(mutation, err)
	if types.IsCode(err, types.ErrDirectRebindRejected) {
		h.metrics.RecordRebindRejection()
	}
	if err == nil {
		h.metrics.SetInventorySize(h.registry.Len(), h.registry.Table().Len())
	}
}

func (h *InventoryHandler) mirrorInventory(ctx context.Context) {
	if h.mirror == nil {
		return
	}
	rev, err := h.mirror.Save(ctx, h.registry.ListExtensions())
	if err != nil {
		h.logger.Warn("inventory mirror write failed", zap.Error(err))
		return
	}
	h.logger.Debug("inventory mirrored", zap.String("revision", rev))
}
