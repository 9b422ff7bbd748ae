package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PreviewRequest asks for a read-only preview of a bulk operation.
type PreviewRequest struct {
	Type   string          `json:"type" validate:"required"`
	Params json.RawMessage `json:"params" validate:"required"`
}

// ExecuteRequest starts a bulk operation. OperationID is caller-supplied and
// must be unique among currently active operations.
type ExecuteRequest struct {
	OperationID string          `json:"operation_id" validate:"required,min=1,max=128"`
	Type        string          `json:"type" validate:"required"`
	Params      json.RawMessage `json:"params" validate:"required"`
}

// SimilarityRequest asks for the similarity breakdown of one record pair.
type SimilarityRequest struct {
	RecordA uuid.UUID `json:"record_a" validate:"required"`
	RecordB uuid.UUID `json:"record_b" validate:"required"`
}

// DuplicateScanRequest scopes a duplicate detection run to one user's records.
type DuplicateScanRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// TokenRequest exchanges the admin token for a short-lived API JWT.
type TokenRequest struct {
	AdminToken string `json:"admin_token" validate:"required"`
}

// Validate validates the PreviewRequest using the validator.
func (r *PreviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ExecuteRequest using the validator.
func (r *ExecuteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SimilarityRequest using the validator.
func (r *SimilarityRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DuplicateScanRequest using the validator.
func (r *DuplicateScanRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
