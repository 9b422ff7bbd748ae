// Package bulkops implements the bulk operation engine: preview, execute,
// status and cancellation of corrective operations against the record store,
// with progress tracking, partial-failure isolation, and best-effort
// compensating rollback.
package bulkops

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/types"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[types.OperationType]string{
	types.OpUpdateSkills:    "schemas/update_skills.json",
	types.OpFixDates:        "schemas/fix_dates.json",
	types.OpMergeDuplicates: "schemas/merge_duplicates.json",
}

// SkillUpdate replaces one record's skill set.
type SkillUpdate struct {
	RecordID uuid.UUID `json:"record_id" validate:"required"`
	Skills   []string  `json:"skills" validate:"required"`
}

// UpdateSkillsParams are the params for an update-skills operation.
type UpdateSkillsParams struct {
	Updates []SkillUpdate `json:"updates" validate:"required,min=1,dive"`
}

// DateCorrection sets one record's date range. A nil DateEnd marks the
// engagement as ongoing.
type DateCorrection struct {
	RecordID  uuid.UUID  `json:"record_id" validate:"required"`
	DateStart *time.Time `json:"date_start" validate:"required"`
	DateEnd   *time.Time `json:"date_end"`
}

// FixDatesParams are the params for a fix-dates operation.
type FixDatesParams struct {
	Corrections []DateCorrection `json:"corrections" validate:"required,min=1,dive"`
}

// MergeSpec merges one or more duplicates into a primary record under a
// named strategy.
type MergeSpec struct {
	PrimaryID    uuid.UUID   `json:"primary_id" validate:"required"`
	DuplicateIDs []uuid.UUID `json:"duplicate_ids" validate:"required,min=1"`
	Strategy     string      `json:"strategy" validate:"required"`
}

// MergeDuplicatesParams are the params for a merge-duplicates operation.
type MergeDuplicatesParams struct {
	Merges []MergeSpec `json:"merges" validate:"required,min=1,dive"`
}

// parseParams validates raw params against the operation's JSON schema, then
// decodes and struct-validates them. Any violation is a ValidationError and
// the operation is never created.
func parseParams(opType types.OperationType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, cberrors.NewValidation("missing params for operation type %q", opType)
	}
	if err := validateSchema(opType, raw); err != nil {
		return nil, err
	}

	switch opType {
	case types.OpUpdateSkills:
		var p UpdateSkillsParams
		return decodeParams(raw, &p)
	case types.OpFixDates:
		var p FixDatesParams
		return decodeParams(raw, &p)
	case types.OpMergeDuplicates:
		var p MergeDuplicatesParams
		return decodeParams(raw, &p)
	}
	return nil, cberrors.NewValidation("unknown operation type %q", opType)
}

func decodeParams[T any](raw json.RawMessage, out *T) (T, error) {
	if err := json.Unmarshal(raw, out); err != nil {
		return *out, &cberrors.ValidationError{Message: "malformed params", Cause: err}
	}
	if err := validator.New().Struct(out); err != nil {
		return *out, &cberrors.ValidationError{Message: "invalid params", Cause: err}
	}
	return *out, nil
}

func validateSchema(opType types.OperationType, raw json.RawMessage) error {
	file, ok := schemaFiles[opType]
	if !ok {
		return cberrors.NewValidation("unknown operation type %q", opType)
	}
	schema, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", file, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return &cberrors.ValidationError{Message: "params are not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	msg := "invalid params"
	if errs := result.Errors(); len(errs) > 0 {
		field := errs[0].Field()
		if field == "" {
			field = "(root)"
		}
		msg = fmt.Sprintf("invalid params: %s: %s", field, errs[0].Description())
	}
	return cberrors.NewValidation("%s", msg)
}
