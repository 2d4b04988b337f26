package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/types"
)

// Response is the unified API response envelope.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorInfo carries a structured error in an API response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are gone at this point; nothing more we can do.
		return
	}
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// WriteError writes an error envelope, mapping registry error codes to
// HTTP statuses.
func WriteError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var regErr *types.Error
	if !errors.As(err, &regErr) {
		regErr = types.NewError(types.ErrInternalError, "internal error").WithCause(err)
	}
	status := mapErrorCodeToHTTPStatus(regErr.Code)

	if logger != nil {
		logger.Error("API error",
			zap.String("code", string(regErr.Code)),
			zap.String("message", regErr.Message),
			zap.Int("status", status),
			zap.Error(regErr.Cause),
		)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(regErr.Code),
			Message: regErr.Message,
		},
		Timestamp: time.Now(),
	})
}

func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest, types.ErrInvalidExtension:
		return http.StatusBadRequest
	case types.ErrNotFound, types.ErrOperationUnbound:
		return http.StatusNotFound
	case types.ErrDuplicateName, types.ErrDirectRebindRejected:
		return http.StatusConflict
	case types.ErrHandlerNotAttached:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody strictly decodes a JSON request body into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) error {
	if r.Body == nil {
		err := types.NewError(types.ErrInvalidRequest, "request body is empty")
		WriteError(w, err, logger)
		return err
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		apiErr := types.NewError(types.ErrInvalidRequest, "invalid JSON body").WithCause(err)
		WriteError(w, apiErr, logger)
		return apiErr
	}
	return nil
}

// MethodNotAllowed rejects a request with 405.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(types.ErrInvalidRequest),
			Message: "method " + r.Method + " not allowed",
		},
		Timestamp: time.Now(),
	})
}
