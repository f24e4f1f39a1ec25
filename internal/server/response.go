package server

import (
	"encoding/json"
	"net/http"

	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/pipeline"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details *rigerrors.RigError `json:"details,omitempty"`
}

// ActionResponse is the body returned by a successful action
type ActionResponse struct {
	Status  pipeline.Status `json:"status"`
	Summary string          `json:"summary"`
	Stats   pipeline.Stats  `json:"stats"`
	Rig     json.RawMessage `json:"rig"`
}

// StatusFor maps an error to the HTTP status the bridge reports it with
func StatusFor(err error) int {
	re, ok := rigerrors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch re.Category() {
	case rigerrors.CategoryPrecondition:
		return http.StatusConflict
	case rigerrors.CategoryStructural:
		return http.StatusUnprocessableEntity
	case rigerrors.CategoryDocument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// RenderError renders err with the status StatusFor picks
func RenderError(w http.ResponseWriter, err error) {
	RenderErrorWithStatus(w, StatusFor(err), err)
}

// RenderErrorWithStatus renders an error response with an explicit status
func RenderErrorWithStatus(w http.ResponseWriter, statusCode int, err error) {
	response := &ErrorResponse{
		Error:   errorKind(statusCode),
		Message: err.Error(),
	}
	if re, ok := rigerrors.As(err); ok {
		response.Message = re.Message
		response.Code = re.Code
		response.Details = &re
	}
	RenderJSON(w, statusCode, response)
}

// RenderJSON writes v as a JSON body
func RenderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func errorKind(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "precondition_failed"
	case http.StatusUnprocessableEntity:
		return "structural_inconsistency"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "internal_error"
	}
}
