package model

import (
	"encoding/json"
	"time"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// WorkRequest is the typed envelope a producer submits to the memory
// workers. Payload is the operation-specific input, decoded by the handler.
type WorkRequest struct {
	ID          types.WorkID    `json:"id"`
	Op          types.WorkOp    `json:"operation"`
	Username    string          `json:"username"`
	ProfilePath string          `json:"profile_path,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at,omitzero"`
}

// Validate checks if the request is dispatchable
func (r *WorkRequest) Validate() error {
	if r.ID == "" {
		return types.ErrBadRequest
	}
	if !r.Op.IsValid() {
		return types.ErrBadRequest
	}
	return nil
}

// WorkError is the structured failure carried back across the worker
// boundary. Kind names the error class so a remote caller can choose its
// own user-facing message without parsing Message.
type WorkError struct {
	Kind    types.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// WorkResponse is the reply to one WorkRequest. Exactly one of Result or
// Error is set; errors and panics never cross the boundary raw.
type WorkResponse struct {
	ID      types.WorkID    `json:"id"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WorkError      `json:"error,omitempty"`
}

// NewWorkResponse builds a success response with a marshaled result
func NewWorkResponse(id types.WorkID, result any) (*WorkResponse, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &WorkResponse{ID: id, Success: true, Result: raw}, nil
}

// NewWorkErrorResponse builds a failure response from an error chain
func NewWorkErrorResponse(id types.WorkID, err error) *WorkResponse {
	return &WorkResponse{
		ID:      id,
		Success: false,
		Error: &WorkError{
			Kind:    types.KindOf(err),
			Message: err.Error(),
		},
	}
}
