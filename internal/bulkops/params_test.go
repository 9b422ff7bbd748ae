package bulkops

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/types"
)

func TestParseParams_UpdateSkills(t *testing.T) {
	id := uuid.New()
	raw := json.RawMessage(fmt.Sprintf(
		`{"updates":[{"record_id":%q,"skills":["Go","SQL"]}]}`, id))

	params, err := parseParams(types.OpUpdateSkills, raw)
	require.NoError(t, err)

	p, ok := params.(UpdateSkillsParams)
	require.True(t, ok)
	require.Len(t, p.Updates, 1)
	assert.Equal(t, id, p.Updates[0].RecordID)
	assert.Equal(t, []string{"Go", "SQL"}, p.Updates[0].Skills)
}

func TestParseParams_FixDates(t *testing.T) {
	id := uuid.New()
	raw := json.RawMessage(fmt.Sprintf(
		`{"corrections":[{"record_id":%q,"date_start":"2020-01-01T00:00:00Z","date_end":null}]}`, id))

	params, err := parseParams(types.OpFixDates, raw)
	require.NoError(t, err)

	p, ok := params.(FixDatesParams)
	require.True(t, ok)
	require.Len(t, p.Corrections, 1)
	require.NotNil(t, p.Corrections[0].DateStart)
	assert.Nil(t, p.Corrections[0].DateEnd)
}

func TestParseParams_MergeDuplicates(t *testing.T) {
	primary, dup := uuid.New(), uuid.New()
	raw := json.RawMessage(fmt.Sprintf(
		`{"merges":[{"primary_id":%q,"duplicate_ids":[%q],"strategy":"prefer_recent"}]}`, primary, dup))

	params, err := parseParams(types.OpMergeDuplicates, raw)
	require.NoError(t, err)

	p, ok := params.(MergeDuplicatesParams)
	require.True(t, ok)
	require.Len(t, p.Merges, 1)
	assert.Equal(t, "prefer_recent", p.Merges[0].Strategy)
}

func TestParseParams_SchemaViolations(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		opType types.OperationType
		raw    string
	}{
		{"missing updates", types.OpUpdateSkills, `{}`},
		{"empty updates", types.OpUpdateSkills, `{"updates":[]}`},
		{"non-uuid record id", types.OpUpdateSkills, `{"updates":[{"record_id":"rec-1","skills":["Go"]}]}`},
		{"missing skills", types.OpUpdateSkills, fmt.Sprintf(`{"updates":[{"record_id":%q}]}`, id)},
		{"unknown top-level field", types.OpUpdateSkills, fmt.Sprintf(`{"updates":[{"record_id":%q,"skills":["Go"]}],"dry_run":true}`, id)},
		{"unknown item field", types.OpUpdateSkills, fmt.Sprintf(`{"updates":[{"record_id":%q,"skills":["Go"],"force":true}]}`, id)},
		{"missing date_start", types.OpFixDates, fmt.Sprintf(`{"corrections":[{"record_id":%q,"date_end":null}]}`, id)},
		{"non-date date_start", types.OpFixDates, fmt.Sprintf(`{"corrections":[{"record_id":%q,"date_start":"soon"}]}`, id)},
		{"unknown strategy", types.OpMergeDuplicates, fmt.Sprintf(`{"merges":[{"primary_id":%q,"duplicate_ids":[%q],"strategy":"coin_flip"}]}`, id, uuid.New())},
		{"empty duplicate ids", types.OpMergeDuplicates, fmt.Sprintf(`{"merges":[{"primary_id":%q,"duplicate_ids":[],"strategy":"keep_primary"}]}`, id)},
		{"not json", types.OpUpdateSkills, `updates=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseParams(tt.opType, json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, cberrors.IsValidation(err))
		})
	}
}

func TestParseParams_EmptyRaw(t *testing.T) {
	_, err := parseParams(types.OpUpdateSkills, nil)
	assert.True(t, cberrors.IsValidation(err))
}
