package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/careerbase/internal/types"
)

// ApplyRecordFields sets the given field values on a record in place. Unknown
// field keys or mismatched value types are errors. Both the in-memory store
// and rollback replay use this to interpret field maps.
func ApplyRecordFields(rec *types.Record, fields map[string]any) error {
	for key, value := range fields {
		switch key {
		case FieldTitle:
			s, err := asString(key, value)
			if err != nil {
				return err
			}
			rec.Title = s
		case FieldOrg:
			s, err := asString(key, value)
			if err != nil {
				return err
			}
			rec.Org = s
		case FieldDescription:
			s, err := asString(key, value)
			if err != nil {
				return err
			}
			rec.Description = s
		case FieldLocation:
			p, err := asStringPtr(key, value)
			if err != nil {
				return err
			}
			rec.Location = p
		case FieldDateStart:
			t, err := asTimePtr(key, value)
			if err != nil {
				return err
			}
			rec.DateStart = t
		case FieldDateEnd:
			t, err := asTimePtr(key, value)
			if err != nil {
				return err
			}
			rec.DateEnd = t
		case FieldSkills:
			s, ok := value.([]string)
			if !ok {
				return fmt.Errorf("field %q: expected []string, got %T", key, value)
			}
			rec.Skills = append([]string(nil), s...)
		default:
			return fmt.Errorf("unknown record field %q", key)
		}
	}
	rec.UpdatedAt = time.Now()
	return nil
}

// ApplyChunkFields sets the given field values on a chunk in place.
func ApplyChunkFields(chunk *types.ContentChunk, fields map[string]any) error {
	for key, value := range fields {
		switch key {
		case FieldRecordID:
			id, ok := value.(uuid.UUID)
			if !ok {
				return fmt.Errorf("field %q: expected uuid.UUID, got %T", key, value)
			}
			chunk.RecordID = id
		case FieldText:
			s, err := asString(key, value)
			if err != nil {
				return err
			}
			chunk.Text = s
		case FieldEmbedding:
			switch v := value.(type) {
			case nil:
				chunk.Embedding = nil
			case []float32:
				chunk.Embedding = append([]float32(nil), v...)
			default:
				return fmt.Errorf("field %q: expected []float32, got %T", key, value)
			}
		default:
			return fmt.Errorf("unknown chunk field %q", key)
		}
	}
	return nil
}

func asString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, value)
	}
	return s, nil
}

func asStringPtr(key string, value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *string:
		return v, nil
	case string:
		return &v, nil
	}
	return nil, fmt.Errorf("field %q: expected *string, got %T", key, value)
}

func asTimePtr(key string, value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *time.Time:
		return v, nil
	case time.Time:
		return &v, nil
	}
	return nil, fmt.Errorf("field %q: expected *time.Time, got %T", key, value)
}
