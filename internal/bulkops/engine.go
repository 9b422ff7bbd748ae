package bulkops

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/embedding"
	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/merge"
	"github.com/jonathan/careerbase/internal/metrics"
	"github.com/jonathan/careerbase/internal/parsing"
	"github.com/jonathan/careerbase/internal/store"
	"github.com/jonathan/careerbase/internal/types"
)

// Config wires the engine's collaborators. Records, Chunks and Operations
// are required; a nil Embedder disables embedding refresh, a nil Metrics
// disables instrumentation.
type Config struct {
	Records    store.RecordStore
	Chunks     store.ChunkStore
	Embedder   embedding.Embedder
	Operations OperationStore
	Logger     logging.Logger
	Metrics    *metrics.Metrics
}

// Engine executes bulk corrective operations. Each operation's apply loop is
// sequential, one record mutation at a time, so the rollback stack ordering
// is deterministic. Distinct operation ids may run concurrently with no
// cross-operation locking; concurrent operations touching overlapping
// records are undefined behavior.
type Engine struct {
	records  store.RecordStore
	chunks   store.ChunkStore
	embedder embedding.Embedder
	ops      OperationStore
	rollback *RollbackManager
	logger   logging.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	active map[string]*activeOp
}

// activeOp is the in-process handle for a running operation. The cancelled
// flag is observed cooperatively between items, never mid-item.
type activeOp struct {
	running   atomic.Bool
	cancelled atomic.Bool
}

// Result is what Execute returns to the caller once the operation reaches a
// terminal state.
type Result struct {
	OperationID string                 `json:"operation_id"`
	Status      types.OperationStatus  `json:"status"`
	Duration    time.Duration          `json:"duration_ns"`
	Results     types.OperationResults `json:"results"`
}

// New creates an engine over the given collaborators.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	ops := cfg.Operations
	if ops == nil {
		ops = NewMemoryOperationStore(0)
	}
	return &Engine{
		records:  cfg.Records,
		chunks:   cfg.Chunks,
		embedder: cfg.Embedder,
		ops:      ops,
		rollback: NewRollbackManager(cfg.Records, cfg.Chunks, logger),
		logger:   logger,
		metrics:  cfg.Metrics,
		active:   make(map[string]*activeOp),
	}
}

// workItem is one unit of the apply loop: a record id for error context plus
// the mutation closure.
type workItem struct {
	recordID uuid.UUID
	apply    func(ctx context.Context, op *types.Operation) error
}

// Execute runs an operation to a terminal state and returns the outcome.
// The id must be unique among currently active operations; re-entrant
// execution of the same id is rejected. Per-item failures are recorded and
// do not abort the batch. An engine-level failure marks the operation failed
// and triggers rollback before the error is returned.
func (e *Engine) Execute(ctx context.Context, id string, opType types.OperationType, raw json.RawMessage) (*Result, error) {
	if id == "" {
		return nil, cberrors.NewValidation("operation id is required")
	}
	if !opType.Valid() {
		return nil, cberrors.NewValidation("unknown operation type %q", opType)
	}
	params, err := parseParams(opType, raw)
	if err != nil {
		return nil, err
	}

	handle, err := e.register(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.unregister(id)

	op := &types.Operation{
		ID:        id,
		Type:      opType,
		Status:    types.StatusStarted,
		StartTime: time.Now(),
	}
	e.put(ctx, op)

	op.Status = types.StatusRunning
	handle.running.Store(true)
	e.put(ctx, op)
	e.logger.Info("operation started",
		logging.F("operation_id", id), logging.F("type", string(opType)))

	items := e.buildItems(params)
	err = e.run(ctx, op, handle, items)
	e.finish(op)

	result := &Result{
		OperationID: op.ID,
		Status:      op.Status,
		Duration:    op.Duration(),
		Results:     op.Snapshot().Results,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

// register claims the operation id, rejecting ids with an in-process handle
// or a non-terminal snapshot in the operation store.
func (e *Engine) register(ctx context.Context, id string) (*activeOp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.active[id]; ok {
		return nil, cberrors.NewValidation("operation %q is already running", id)
	}
	existing, err := e.ops.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Status.Terminal() {
		return nil, cberrors.NewValidation("operation %q is already active", id)
	}
	handle := &activeOp{}
	e.active[id] = handle
	return handle, nil
}

func (e *Engine) unregister(id string) {
	e.mu.Lock()
	delete(e.active, id)
	e.mu.Unlock()
}

// run drives the sequential apply loop. Returned errors are engine-level;
// per-item failures are absorbed into op.Results.
func (e *Engine) run(ctx context.Context, op *types.Operation, handle *activeOp, items []workItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.fail(ctx, op, fmt.Errorf("operation panicked: %v", r))
		}
	}()

	total := len(items)
	for i, item := range items {
		if handle.cancelled.Load() {
			e.cancelAndRollback(ctx, op)
			return nil
		}
		if ctx.Err() != nil {
			return e.fail(ctx, op, ctx.Err())
		}

		op.Results.Processed++
		if itemErr := item.apply(ctx, op); itemErr != nil {
			op.Results.Failed++
			op.Results.Errors = append(op.Results.Errors, types.ItemError{
				RecordID: item.recordID.String(),
				Message:  itemErr.Error(),
			})
			e.metrics.ItemProcessed(string(op.Type), "failure")
			e.logger.Warn("operation item failed",
				logging.F("operation_id", op.ID),
				logging.F("record_id", item.recordID.String()),
				logging.Err(itemErr))
		} else {
			op.Results.Successful++
			e.metrics.ItemProcessed(string(op.Type), "success")
		}

		op.Progress = int(math.Round(100 * float64(i+1) / float64(total)))
		e.put(ctx, op)
	}

	// Cancellations racing the final item resolve under the registry lock:
	// either the cancel landed and wins here, or running is cleared first and
	// Cancel reports false.
	e.mu.Lock()
	cancelled := handle.cancelled.Load()
	if !cancelled {
		handle.running.Store(false)
	}
	e.mu.Unlock()
	if cancelled {
		e.cancelAndRollback(ctx, op)
		return nil
	}

	op.Status = types.StatusCompleted
	return nil
}

// buildItems expands validated params into the apply loop's work items.
func (e *Engine) buildItems(params any) []workItem {
	var items []workItem
	switch p := params.(type) {
	case UpdateSkillsParams:
		for _, upd := range p.Updates {
			upd := upd
			items = append(items, workItem{
				recordID: upd.RecordID,
				apply: func(ctx context.Context, op *types.Operation) error {
					return e.applyUpdateSkills(ctx, op, upd)
				},
			})
		}
	case FixDatesParams:
		for _, corr := range p.Corrections {
			corr := corr
			items = append(items, workItem{
				recordID: corr.RecordID,
				apply: func(ctx context.Context, op *types.Operation) error {
					return e.applyFixDates(ctx, op, corr)
				},
			})
		}
	case MergeDuplicatesParams:
		for _, spec := range p.Merges {
			spec := spec
			items = append(items, workItem{
				recordID: spec.PrimaryID,
				apply: func(ctx context.Context, op *types.Operation) error {
					return e.applyMerge(ctx, op, spec)
				},
			})
		}
	}
	return items
}

func (e *Engine) applyUpdateSkills(ctx context.Context, op *types.Operation, upd SkillUpdate) error {
	rec, err := e.records.SelectOne(ctx, upd.RecordID)
	if err != nil {
		return err
	}

	after := parsing.NormalizeSkillSet(upd.Skills)
	op.RollbackData = append(op.RollbackData, types.RollbackEntry{
		Kind:     types.RollbackUpdate,
		RecordID: rec.ID,
		Fields:   map[string]any{store.FieldSkills: rec.Skills},
	})
	if err := e.records.Update(ctx, rec.ID, map[string]any{store.FieldSkills: after}); err != nil {
		return err
	}
	op.Results.Changes = append(op.Results.Changes, types.Change{
		RecordID: rec.ID,
		Field:    store.FieldSkills,
		Before:   rec.Skills,
		After:    after,
	})

	e.refreshEmbeddings(ctx, op, rec.ID)
	return nil
}

func (e *Engine) applyFixDates(ctx context.Context, op *types.Operation, corr DateCorrection) error {
	rec, err := e.records.SelectOne(ctx, corr.RecordID)
	if err != nil {
		return err
	}

	op.RollbackData = append(op.RollbackData, types.RollbackEntry{
		Kind:     types.RollbackUpdate,
		RecordID: rec.ID,
		Fields: map[string]any{
			store.FieldDateStart: rec.DateStart,
			store.FieldDateEnd:   rec.DateEnd,
		},
	})
	fields := map[string]any{
		store.FieldDateStart: corr.DateStart,
		store.FieldDateEnd:   corr.DateEnd,
	}
	if err := e.records.Update(ctx, rec.ID, fields); err != nil {
		return err
	}
	op.Results.Changes = append(op.Results.Changes,
		types.Change{RecordID: rec.ID, Field: store.FieldDateStart, Before: rec.DateStart, After: corr.DateStart},
		types.Change{RecordID: rec.ID, Field: store.FieldDateEnd, Before: rec.DateEnd, After: corr.DateEnd},
	)
	return nil
}

// applyMerge folds duplicates into the primary: update the primary per the
// strategy, re-home each duplicate's chunks, delete the duplicate row, then
// refresh embeddings for the re-homed chunks.
func (e *Engine) applyMerge(ctx context.Context, op *types.Operation, spec MergeSpec) error {
	strategy, err := merge.Resolve(spec.Strategy)
	if err != nil {
		return err
	}
	primary, err := e.records.SelectOne(ctx, spec.PrimaryID)
	if err != nil {
		return err
	}
	dups := make([]types.Record, 0, len(spec.DuplicateIDs))
	for _, dupID := range spec.DuplicateIDs {
		dup, err := e.records.SelectOne(ctx, dupID)
		if err != nil {
			return err
		}
		dups = append(dups, *dup)
	}

	merged := strategy.Resolve(*primary, dups)
	op.RollbackData = append(op.RollbackData, types.RollbackEntry{
		Kind:     types.RollbackUpdate,
		RecordID: primary.ID,
		Fields:   recordFieldValues(*primary),
	})
	if err := e.records.Update(ctx, primary.ID, recordFieldValues(merged)); err != nil {
		return err
	}
	op.Results.Changes = append(op.Results.Changes, mergeChanges(*primary, merged)...)

	var reassigned []uuid.UUID
	for _, dup := range dups {
		chunks, err := e.chunks.SelectByRecordID(ctx, dup.ID)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			op.RollbackData = append(op.RollbackData, types.RollbackEntry{
				Kind:    types.RollbackChunkUpdate,
				ChunkID: chunk.ID,
				Fields:  map[string]any{store.FieldRecordID: dup.ID},
			})
			if err := e.chunks.Update(ctx, chunk.ID, map[string]any{store.FieldRecordID: primary.ID}); err != nil {
				return err
			}
			reassigned = append(reassigned, chunk.ID)
		}

		snapshot := dup.Clone()
		op.RollbackData = append(op.RollbackData, types.RollbackEntry{
			Kind:     types.RollbackDelete,
			RecordID: dup.ID,
			Record:   &snapshot,
			Chunks:   cloneChunks(chunks),
		})
		if err := e.records.Delete(ctx, []uuid.UUID{dup.ID}); err != nil {
			return err
		}
		op.Results.Changes = append(op.Results.Changes, types.Change{
			RecordID: dup.ID,
			Field:    "record",
			Before:   "present",
			After:    "deleted",
		})
	}

	e.refreshChunkEmbeddings(ctx, op, primary.ID, reassigned)
	return nil
}

// refreshEmbeddings re-embeds every chunk of a record. Soft failures keep
// the stale embedding and are logged, never fatal.
func (e *Engine) refreshEmbeddings(ctx context.Context, op *types.Operation, recordID uuid.UUID) {
	if e.embedder == nil {
		return
	}
	chunks, err := e.chunks.SelectByRecordID(ctx, recordID)
	if err != nil {
		e.embeddingFailed(op, recordID.String(), err)
		return
	}
	for _, chunk := range chunks {
		e.refreshChunk(ctx, op, chunk)
	}
}

func (e *Engine) refreshChunkEmbeddings(ctx context.Context, op *types.Operation, recordID uuid.UUID, chunkIDs []uuid.UUID) {
	if e.embedder == nil || len(chunkIDs) == 0 {
		return
	}
	want := make(map[uuid.UUID]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		want[id] = true
	}
	// Reassigned chunks now all live under the primary; one lookup covers
	// them.
	chunks, err := e.chunks.SelectByRecordID(ctx, recordID)
	if err != nil {
		e.embeddingFailed(op, recordID.String(), err)
		return
	}
	for _, chunk := range chunks {
		if want[chunk.ID] {
			e.refreshChunk(ctx, op, chunk)
		}
	}
}

func (e *Engine) refreshChunk(ctx context.Context, op *types.Operation, chunk types.ContentChunk) {
	text := parsing.StripHTML(chunk.Text)
	vec, err := e.embedder.EmbedText(ctx, text, embedding.ModeDocument)
	if err != nil || vec == nil {
		e.embeddingFailed(op, chunk.ID.String(), err)
		return
	}
	if err := e.chunks.Update(ctx, chunk.ID, map[string]any{store.FieldEmbedding: vec}); err != nil {
		e.embeddingFailed(op, chunk.ID.String(), err)
	}
}

func (e *Engine) embeddingFailed(op *types.Operation, subject string, err error) {
	e.metrics.EmbeddingSoftFailure()
	e.logger.Warn("embedding refresh failed, keeping stale embedding",
		logging.F("operation_id", op.ID),
		logging.F("subject", subject),
		logging.Err(err))
}

// fail marks the operation failed, rolls back everything applied so far,
// and returns the engine-level error for the caller.
func (e *Engine) fail(ctx context.Context, op *types.Operation, cause error) error {
	op.Status = types.StatusFailed
	e.put(ctx, op)
	e.logger.Error("operation failed",
		logging.F("operation_id", op.ID), logging.Err(cause))
	e.rollbackOperation(ctx, op)
	return fmt.Errorf("operation %s failed: %w", op.ID, cause)
}

// cancelAndRollback transitions running -> cancelled -> rollback outcome.
func (e *Engine) cancelAndRollback(ctx context.Context, op *types.Operation) {
	op.Status = types.StatusCancelled
	e.put(ctx, op)
	e.logger.Info("operation cancelled",
		logging.F("operation_id", op.ID),
		logging.F("applied", op.Results.Successful))
	e.rollbackOperation(ctx, op)
}

// rollbackOperation replays the rollback stack once. Success lands on
// rolled_back, failure on rollback_failed; neither is retried.
func (e *Engine) rollbackOperation(ctx context.Context, op *types.Operation) {
	if err := e.rollback.Rollback(ctx, op.ID, op.RollbackData); err != nil {
		op.Status = types.StatusRollbackFailed
		e.metrics.RollbackFinished("failed")
		e.logger.Error("rollback failed, manual reconciliation required",
			logging.F("operation_id", op.ID), logging.Err(err))
		return
	}
	op.Status = types.StatusRolledBack
	e.metrics.RollbackFinished("success")
}

// finish stamps the end time and records the terminal snapshot.
func (e *Engine) finish(op *types.Operation) {
	now := time.Now()
	op.EndTime = &now
	e.put(context.Background(), op)
	e.metrics.OperationFinished(string(op.Type), string(op.Status), op.Duration())
	e.logger.Info("operation finished",
		logging.F("operation_id", op.ID),
		logging.F("status", string(op.Status)),
		logging.F("processed", op.Results.Processed),
		logging.F("failed", op.Results.Failed))
}

// put writes a status snapshot; registry write failures are logged and
// swallowed so they never affect the operation itself.
func (e *Engine) put(ctx context.Context, op *types.Operation) {
	if err := e.ops.Put(ctx, op.Snapshot()); err != nil {
		e.logger.Warn("failed to store operation snapshot",
			logging.F("operation_id", op.ID), logging.Err(err))
	}
}

// Status returns a snapshot of the operation, or nil when the id is unknown
// or already evicted. Safe to call concurrently with execution.
func (e *Engine) Status(ctx context.Context, id string) (*types.Operation, error) {
	return e.ops.Get(ctx, id)
}

// Cancel requests cooperative cancellation of a running operation. The flag
// is observed between items, so an in-flight mutation completes first.
// Returns false when the operation is not currently running in this process;
// a true return guarantees the operation will not finish as completed.
func (e *Engine) Cancel(_ context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	handle, ok := e.active[id]
	if !ok || !handle.running.Load() {
		return false
	}
	handle.cancelled.Store(true)
	return true
}

// recordFieldValues captures every merge-writable field of a record.
func recordFieldValues(rec types.Record) map[string]any {
	return map[string]any{
		store.FieldTitle:       rec.Title,
		store.FieldOrg:         rec.Org,
		store.FieldLocation:    rec.Location,
		store.FieldDateStart:   rec.DateStart,
		store.FieldDateEnd:     rec.DateEnd,
		store.FieldSkills:      rec.Skills,
		store.FieldDescription: rec.Description,
	}
}

func mergeChanges(before, after types.Record) []types.Change {
	var out []types.Change
	for _, pc := range diffRecords(before, after) {
		out = append(out, types.Change{
			RecordID: pc.RecordID,
			Field:    pc.Field,
			Before:   pc.Before,
			After:    pc.After,
		})
	}
	return out
}

func cloneChunks(chunks []types.ContentChunk) []types.ContentChunk {
	out := make([]types.ContentChunk, len(chunks))
	for i, c := range chunks {
		out[i] = c.Clone()
	}
	return out
}
