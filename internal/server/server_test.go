package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerbase/internal/bulkops"
	"github.com/jonathan/careerbase/internal/config"
	"github.com/jonathan/careerbase/internal/dedupe"
	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

type testEnv struct {
	server  *Server
	records *store.MemoryRecordStore
	chunks  *store.MemoryChunkStore
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := config.HashAdminToken("admin-token")
	require.NoError(t, err)
	auth := &config.AuthConfig{
		JWTSecret:       "test-secret",
		ExpirationHours: 1,
		AdminTokenHash:  hash,
	}

	records := store.NewMemoryRecordStore()
	chunks := store.NewMemoryChunkStore()
	scorer := similarity.New(similarity.Config{})
	detector := dedupe.New(dedupe.Config{Scorer: scorer, Chunks: chunks})
	engine := bulkops.New(bulkops.Config{Records: records, Chunks: chunks})

	srv, err := New(Config{
		Port:     0,
		Records:  records,
		Chunks:   chunks,
		Scorer:   scorer,
		Detector: detector,
		Engine:   engine,
		Auth:     auth,
	})
	require.NoError(t, err)

	token, _, err := srv.jwtService.GenerateToken("admin")
	require.NoError(t, err)

	return &testEnv{server: srv, records: records, chunks: chunks, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.server.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedJob(title, org string, userID uuid.UUID, skills ...string) types.Record {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := types.Record{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      types.RecordKindJob,
		Title:     title,
		Org:       org,
		DateStart: &start,
		DateEnd:   &end,
		Skills:    skills,
	}
	e.records.Seed(rec)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestToken_Exchange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/token", map[string]string{"admin_token": "admin-token"}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.NotEmpty(t, resp["expires_at"])
}

func TestToken_RejectsWrongAdminToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/auth/token", map[string]string{"admin_token": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RequiredOnProtectedRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/records", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	env.server.httpServer.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRecords_FiltersByUser(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedJob("Engineer", "Acme", userID, "Go")
	env.seedJob("Analyst", "Globex", uuid.New(), "SQL")

	rec := env.do(t, http.MethodGet, "/records?user_id="+userID.String(), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Records []types.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Engineer", resp.Records[0].Title)
}

func TestGetRecord_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/records/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecord_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/records/banana", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimilarity(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	a := env.seedJob("Software Engineer", "Acme", userID, "Go")
	b := env.seedJob("Senior Software Engineer", "Acme", userID, "Go")

	rec := env.do(t, http.MethodPost, "/analysis/similarity", types.SimilarityRequest{
		RecordA: a.ID, RecordB: b.ID,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Similarity types.SimilarityResult `json:"similarity"`
		Confidence types.Confidence       `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Similarity.Company)
	assert.Equal(t, 0.9, resp.Similarity.Title)
	assert.NotEmpty(t, resp.Confidence.Level)
}

func TestDuplicateScan(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedJob("Software Engineer", "Acme", userID, "Go")
	env.seedJob("Software Engineer", "Acme", userID, "Go")

	rec := env.do(t, http.MethodPost, "/analysis/duplicates", types.DuplicateScanRequest{UserID: userID}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var report types.DuplicateReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Groups, 1)
}

func TestExecuteAndStatus(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob("Engineer", "Acme", uuid.New(), "golang")

	params := fmt.Sprintf(`{"updates":[{"record_id":%q,"skills":["Go","SQL"]}]}`, job.ID)
	rec := env.do(t, http.MethodPost, "/operations", types.ExecuteRequest{
		OperationID: "op-1",
		Type:        string(types.OpUpdateSkills),
		Params:      json.RawMessage(params),
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var result bulkops.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Results.Successful)

	rec = env.do(t, http.MethodGet, "/operations/op-1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var op types.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))
	assert.Equal(t, types.StatusCompleted, op.Status)
	assert.Equal(t, 100, op.Progress)
}

func TestExecute_BadParams(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/operations", types.ExecuteRequest{
		OperationID: "op-1",
		Type:        string(types.OpUpdateSkills),
		Params:      json.RawMessage(`{"updates":[]}`),
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOperationStatus_Unknown(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/operations/nope", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCancel_NotRunning(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/operations/nope/cancel", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cancelled":false`)
}

func TestPreviewEndpoint(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob("Engineer", "Acme", uuid.New(), "golang")

	params := fmt.Sprintf(`{"updates":[{"record_id":%q,"skills":["Go"]}]}`, job.ID)
	rec := env.do(t, http.MethodPost, "/operations/preview", types.PreviewRequest{
		Type:   string(types.OpUpdateSkills),
		Params: json.RawMessage(params),
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var pv bulkops.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pv))
	assert.Equal(t, 1, pv.Estimate.Items)
	assert.Len(t, pv.Changes, 1)
}
