package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// handleToken exchanges the admin token for an API JWT.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.auth.VerifyAdminToken(req.AdminToken) {
		s.errorResponse(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken("admin")
	if err != nil {
		s.logger.Error("failed to generate token", logging.Err(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// handleListRecords lists records, optionally filtered by user_id and kind.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if v := r.URL.Query().Get("user_id"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &userID
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := types.RecordKind(v)
		filter.Kind = &kind
	}

	records, err := s.records.Select(r.Context(), filter)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"records": records})
}

// handleGetRecord returns a single record with its content chunks.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := s.records.SelectOne(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	chunks, err := s.chunks.SelectByRecordID(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"record": rec, "chunks": chunks})
}

// handleSimilarity scores one record pair and classifies the confidence.
func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req types.SimilarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.loadContent(r, req.RecordA)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	b, err := s.loadContent(r, req.RecordB)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	sim := s.scorer.Calculate(r.Context(), *a, *b)
	conf := s.scorer.Confidence(sim)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"similarity": sim,
		"confidence": conf,
	})
}

func (s *Server) loadContent(r *http.Request, id uuid.UUID) (*similarity.RecordContent, error) {
	rec, err := s.records.SelectOne(r.Context(), id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunks.SelectByRecordID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &similarity.RecordContent{Record: *rec, Chunks: chunks}, nil
}

// handleDuplicateScan runs duplicate detection over one user's records.
func (s *Server) handleDuplicateScan(w http.ResponseWriter, r *http.Request) {
	var req types.DuplicateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records.Select(r.Context(), store.Filter{UserID: &req.UserID})
	if err != nil {
		s.serviceError(w, err)
		return
	}
	report, err := s.detector.FindDuplicates(r.Context(), records)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handlePreview plans an operation without mutating anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req types.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := s.engine.Preview(r.Context(), types.OperationType(req.Type), req.Params)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, preview)
}

// handleExecute runs an operation to a terminal state. The response carries
// the terminal result; partial failures surface in results.errors.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req types.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Execute(r.Context(), req.OperationID, types.OperationType(req.Type), req.Params)
	if err != nil {
		if result != nil {
			// Terminal but failed; return the outcome with the error.
			s.jsonResponse(w, HTTPStatus(err), map[string]any{
				"error":  err.Error(),
				"result": result,
			})
			return
		}
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleOperationStatus returns an operation snapshot.
func (s *Server) handleOperationStatus(w http.ResponseWriter, r *http.Request) {
	op, err := s.engine.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if op == nil {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"status": "not_found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, op)
}

// handleCancel requests cooperative cancellation of a running operation.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	cancelled := s.engine.Cancel(r.Context(), r.PathValue("id"))
	status := http.StatusOK
	if !cancelled {
		status = http.StatusConflict
	}
	s.jsonResponse(w, status, map[string]bool{"cancelled": cancelled})
}

// serviceError maps a service-layer error onto an HTTP response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Err(err))
	}
	s.errorResponse(w, status, err.Error())
}
