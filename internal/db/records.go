package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// RecordStore implements store.RecordStore on PostgreSQL.
type RecordStore struct {
	pool *pgxpool.Pool
}

const recordColumns = `id, user_id, kind, title, org, location, date_start, date_end, skills, description, created_at, updated_at`

// recordUpdateColumns whitelists the store field keys acceptable in Update.
var recordUpdateColumns = map[string]string{
	store.FieldTitle:       "title",
	store.FieldOrg:         "org",
	store.FieldLocation:    "location",
	store.FieldDateStart:   "date_start",
	store.FieldDateEnd:     "date_end",
	store.FieldSkills:      "skills",
	store.FieldDescription: "description",
}

// Select retrieves records with optional filters, ordered by date_start.
func (s *RecordStore) Select(ctx context.Context, f store.Filter) ([]types.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE 1=1`
	args := []any{}
	argNum := 1

	if f.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, *f.UserID)
		argNum++
	}
	if f.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, string(*f.Kind))
		argNum++
	}
	if len(f.IDs) > 0 {
		query += fmt.Sprintf(" AND id = ANY($%d)", argNum)
		args = append(args, f.IDs)
	}

	query += " ORDER BY date_start ASC NULLS LAST, id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &cberrors.StoreError{Op: "select records", Cause: err}
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &cberrors.StoreError{Op: "scan record", Cause: err}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SelectOne retrieves a single record by id.
func (s *RecordStore) SelectOne(ctx context.Context, id uuid.UUID) (*types.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cberrors.NewNotFound("record", id.String())
		}
		return nil, &cberrors.StoreError{Op: "select record", Cause: err}
	}
	return &rec, nil
}

// Update applies the given field values to a record.
func (s *RecordStore) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := []any{}
	argNum := 1

	for key, value := range fields {
		column, ok := recordUpdateColumns[key]
		if !ok {
			return &cberrors.StoreError{Op: "update record", Cause: fmt.Errorf("unknown field %q", key)}
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE records SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	args = append(args, id)

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return &cberrors.StoreError{Op: "update record", Cause: err}
	}
	if result.RowsAffected() == 0 {
		return cberrors.NewNotFound("record", id.String())
	}
	return nil
}

// Delete removes the given records; their chunks cascade at the schema level
// only when explicitly deleted, so merge keeps reassigned chunks intact.
func (s *RecordStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM records WHERE id = ANY($1)`, ids)
	if err != nil {
		return &cberrors.StoreError{Op: "delete records", Cause: err}
	}
	return nil
}

// Insert adds a record, used by rollback to restore deleted rows.
func (s *RecordStore) Insert(ctx context.Context, rec types.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.UserID, string(rec.Kind), rec.Title, rec.Org, rec.Location,
		rec.DateStart, rec.DateEnd, rec.Skills, rec.Description, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return &cberrors.StoreError{Op: "insert record", Cause: err}
	}
	return nil
}

func scanRecord(row pgx.Row) (types.Record, error) {
	var rec types.Record
	var kind string
	err := row.Scan(
		&rec.ID, &rec.UserID, &kind, &rec.Title, &rec.Org, &rec.Location,
		&rec.DateStart, &rec.DateEnd, &rec.Skills, &rec.Description,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return types.Record{}, err
	}
	rec.Kind = types.RecordKind(kind)
	return rec, nil
}
