package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"segdesk/internal/modules/workflow/domain"
	workflowout "segdesk/internal/modules/workflow/port/out"
	"segdesk/internal/platform/clock"
	apperrors "segdesk/internal/platform/errors"
	"segdesk/internal/platform/logging"
)

type EngineOptions struct {
	UserID     string
	WindowSize int
	Emotions   []string
	Clock      clock.Clock
	Logger     *slog.Logger
}

// State is an immutable snapshot of the engine for renderers.
type State struct {
	UserID      string
	Segments    []domain.Segment
	Generation  uint64
	Position    int
	Window      domain.Window
	Finished    bool
	Pending     bool
	QueueErr    error
	DetailErr   error
	Detail      domain.SegmentDetail
	DraftLoaded bool
	Draft       domain.Draft
	CanCommit   bool
}

// Current returns the segment under the cursor.
func (s State) Current() (domain.Segment, bool) {
	if s.Position < 1 || s.Position > len(s.Segments) {
		return domain.Segment{}, false
	}
	return s.Segments[s.Position-1], true
}

func (s State) AtEnd() bool { return len(s.Segments) > 0 && s.Position == len(s.Segments) }

// StartSignal asks the caller to fire Start for SegmentID. It is raised by
// the first edit of a visit to a ready segment.
type StartSignal struct {
	SegmentID int64
	Fire      bool
}

// Engine owns the queue, the cursor and the draft, and is the only writer
// of all three. Backend calls run outside the lock; epoch and segment id
// checks drop responses that no longer apply.
type Engine struct {
	backend  workflowout.SegmentBackend
	anchor   *Anchor
	journal  workflowout.BatchJournal
	clock    clock.Clock
	logger   *slog.Logger
	emotions []string

	mu           sync.Mutex
	userID       string
	epoch        uint64
	queue        domain.Queue
	cursor       domain.Cursor
	session      domain.EditingSession
	detail       domain.SegmentDetail
	detailErr    error
	queueErr     error
	loaded       bool
	pending      bool
	batchStarted time.Time
}

func NewEngine(backend workflowout.SegmentBackend, anchor *Anchor, journal workflowout.BatchJournal, opts EngineOptions) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Engine{
		backend:  backend,
		anchor:   anchor,
		journal:  journal,
		clock:    clk,
		logger:   logging.Component(opts.Logger, "engine"),
		emotions: opts.Emotions,
		userID:   opts.UserID,
		cursor:   domain.NewCursor(opts.WindowSize),
	}
}

// Load fetches the queue for the current user and picks the resume point,
// honouring the persisted anchor.
func (e *Engine) Load(ctx context.Context) (State, error) {
	return e.fetch(ctx, true)
}

// Reload refetches the queue and keeps the cursor on the same segment id.
func (e *Engine) Reload(ctx context.Context) (State, error) {
	e.mu.Lock()
	first := !e.loaded
	e.mu.Unlock()
	return e.fetch(ctx, first)
}

// SwitchUser drops all state belonging to the previous reviewer and loads
// the new reviewer's queue. In-flight responses for the old user are
// discarded when they arrive.
func (e *Engine) SwitchUser(ctx context.Context, userID string) (State, error) {
	e.mu.Lock()
	if userID == e.userID && e.loaded {
		e.mu.Unlock()
		return e.State(), nil
	}
	e.userID = userID
	e.epoch++
	e.pending = false
	e.loaded = false
	e.queue.Reset()
	e.cursor.Place(0, domain.Selection{})
	e.clearDraftLocked()
	e.queueErr = nil
	e.mu.Unlock()
	e.logger.Info("reviewer changed", slog.String(logging.FieldUserID, userID))
	return e.fetch(ctx, true)
}

func (e *Engine) fetch(ctx context.Context, first bool) (State, error) {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return e.State(), apperrors.ErrMutationPending
	}
	epoch, user := e.epoch, e.userID
	e.mu.Unlock()

	segments, err := e.backend.ListSegments(ctx, user)

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return e.stateLocked(), apperrors.ErrStaleResponse
	}
	if err != nil {
		e.queueErr = fmt.Errorf("%w: %w", apperrors.ErrQueueUnavailable, err)
		e.logger.Error("queue fetch failed", slog.String(logging.FieldUserID, user), logging.Error(err))
		return e.stateLocked(), e.queueErr
	}
	e.applyQueueLocked(ctx, segments, first)
	e.logger.Debug("queue loaded",
		slog.String(logging.FieldUserID, user),
		slog.Int("count", len(segments)),
		slog.Int("position", e.cursor.Position()),
		slog.Bool("first", first),
	)
	return e.stateLocked(), nil
}

// applyQueueLocked swaps in a fetched queue. First loads run AutoSelect with
// the anchor; later loads follow the previous segment id and fall back to
// AutoSelect without the anchor when that id is gone.
func (e *Engine) applyQueueLocked(ctx context.Context, segments []domain.Segment, first bool) {
	prevID := e.currentIDLocked()
	e.queue.Replace(segments)
	e.queueErr = nil

	pos := 0
	if !first && prevID != 0 {
		pos = e.queue.PositionOf(prevID)
	}
	if pos > 0 {
		e.cursor.Rebase(e.queue.Len(), pos)
	} else {
		var anchorID int64
		if first {
			if id, ok := e.anchor.Load(ctx); ok {
				anchorID = id
			}
			e.batchStarted = e.clock.Now()
		}
		e.cursor.Place(e.queue.Len(), domain.AutoSelect(segments, e.cursor.WindowSize(), anchorID))
	}
	e.loaded = true

	if curID := e.currentIDLocked(); curID != prevID {
		e.clearDraftLocked()
		e.anchor.Save(ctx, curID)
	} else if first && curID != 0 {
		e.anchor.Save(ctx, curID)
	}
}

// Open loads the detail of the segment under the cursor and seeds a draft.
// An existing draft for the same segment is kept so a repeated open never
// overwrites unsaved work.
func (e *Engine) Open(ctx context.Context) (State, error) {
	e.mu.Lock()
	seg, ok := e.currentLocked()
	if !ok {
		e.mu.Unlock()
		return e.State(), apperrors.ErrEmptyQueue
	}
	epoch, gen := e.epoch, e.queue.Generation()
	e.mu.Unlock()

	detail, err := e.backend.GetDetail(ctx, seg.ID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch || gen != e.queue.Generation() || e.currentIDLocked() != seg.ID {
		e.logger.Debug("dropping stale detail", slog.Int64(logging.FieldSegmentID, seg.ID))
		return e.stateLocked(), apperrors.ErrStaleResponse
	}
	if err != nil {
		e.detailErr = fmt.Errorf("load segment %d: %w", seg.ID, err)
		e.logger.Error("detail fetch failed", slog.Int64(logging.FieldSegmentID, seg.ID), logging.Error(err))
		return e.stateLocked(), e.detailErr
	}
	if detail.SegmentID == 0 {
		detail.SegmentID = seg.ID
	}
	e.detail = detail
	e.detailErr = nil
	if !(e.session.Loaded() && e.session.SegmentID() == seg.ID) {
		e.session = domain.OpenEditingSession(detail)
	}
	return e.stateLocked(), nil
}

// MoveTo jumps to a 1-based queue position.
func (e *Engine) MoveTo(ctx context.Context, pos int) (State, error) {
	return e.move(ctx, func(c *domain.Cursor) bool { return c.MoveTo(pos) })
}

// Advance moves to the next segment without saving. On the last segment it
// raises the finished signal instead.
func (e *Engine) Advance(ctx context.Context) (State, error) {
	return e.move(ctx, func(c *domain.Cursor) bool { return c.Advance() })
}

func (e *Engine) Retreat(ctx context.Context) (State, error) {
	return e.move(ctx, func(c *domain.Cursor) bool { return c.Retreat() })
}

// Focus moves the cursor to the segment with the given id.
func (e *Engine) Focus(ctx context.Context, segmentID int64) (State, error) {
	e.mu.Lock()
	pos := e.queue.PositionOf(segmentID)
	e.mu.Unlock()
	if pos == 0 {
		return e.State(), fmt.Errorf("%w: segment %d is not in the queue", apperrors.ErrNotFound, segmentID)
	}
	return e.MoveTo(ctx, pos)
}

func (e *Engine) move(ctx context.Context, step func(*domain.Cursor) bool) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending {
		return e.stateLocked(), apperrors.ErrMutationPending
	}
	if step(&e.cursor) {
		e.clearDraftLocked()
		e.anchor.Save(ctx, e.currentIDLocked())
	}
	return e.stateLocked(), nil
}

func (e *Engine) SetTranscription(text string) (StartSignal, error) {
	return e.edit(func(s *domain.EditingSession) bool { return s.SetTranscription(text) })
}

func (e *Engine) SetReport(text string) (StartSignal, error) {
	return e.edit(func(s *domain.EditingSession) bool { return s.SetReport(text) })
}

func (e *Engine) SetEmotion(emotion string) (StartSignal, error) {
	if err := domain.ValidateEmotion(emotion, e.emotions); err != nil {
		return StartSignal{}, err
	}
	return e.edit(func(s *domain.EditingSession) bool { return s.SetEmotion(emotion) })
}

func (e *Engine) edit(apply func(*domain.EditingSession) bool) (StartSignal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending {
		return StartSignal{}, apperrors.ErrMutationPending
	}
	seg, ok := e.currentLocked()
	if !ok {
		return StartSignal{}, apperrors.ErrEmptyQueue
	}
	if !e.session.Loaded() || e.session.SegmentID() != seg.ID {
		return StartSignal{}, fmt.Errorf("%w: segment %d is not open for editing", apperrors.ErrInvalidInput, seg.ID)
	}
	if apply(&e.session) && seg.Status == domain.StatusReady {
		return StartSignal{SegmentID: seg.ID, Fire: true}, nil
	}
	return StartSignal{}, nil
}

// Start marks a ready segment as in progress. It is a no-op for any other
// status, and a failure leaves local state untouched. The local mirror is
// only updated when no fetch replaced the queue while the request was out
// and the segment is still ready.
func (e *Engine) Start(ctx context.Context, segmentID int64) error {
	e.mu.Lock()
	pos := e.queue.PositionOf(segmentID)
	if pos == 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: segment %d is not in the queue", apperrors.ErrNotFound, segmentID)
	}
	seg, _ := e.queue.At(pos)
	epoch, gen := e.epoch, e.queue.Generation()
	e.mu.Unlock()
	if seg.Status != domain.StatusReady {
		return nil
	}

	if err := e.backend.StartSegment(ctx, segmentID); err != nil {
		e.logger.Warn("start signal failed", slog.Int64(logging.FieldSegmentID, segmentID), logging.Error(err))
		return fmt.Errorf("start segment %d: %w", segmentID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch || gen != e.queue.Generation() {
		e.logger.Debug("dropping stale start", slog.Int64(logging.FieldSegmentID, segmentID))
		return nil
	}
	if cur, ok := e.queue.At(e.queue.PositionOf(segmentID)); ok && cur.Status == domain.StatusReady {
		e.queue.SetStatus(segmentID, domain.StatusInProgress)
	}
	return nil
}

// CommitAndAdvance saves the draft, refetches the queue, clears the draft
// and advances. A failed save leaves cursor and draft as they were.
func (e *Engine) CommitAndAdvance(ctx context.Context) (State, error) {
	return e.commit(ctx, domain.EditingSession.BuildUpdate)
}

// ReportOnly saves the defect report of the open segment with the same
// post-conditions as CommitAndAdvance.
func (e *Engine) ReportOnly(ctx context.Context) (State, error) {
	return e.commit(ctx, domain.EditingSession.BuildReport)
}

func (e *Engine) commit(ctx context.Context, build func(domain.EditingSession) (domain.SegmentUpdate, error)) (State, error) {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return e.State(), apperrors.ErrMutationPending
	}
	seg, ok := e.currentLocked()
	if !ok {
		e.mu.Unlock()
		return e.State(), apperrors.ErrEmptyQueue
	}
	update, err := e.buildLocked(seg, build)
	if err != nil {
		e.mu.Unlock()
		return e.State(), err
	}
	e.pending = true
	epoch, user := e.epoch, e.userID
	e.mu.Unlock()

	if err := e.backend.UpdateSegment(ctx, seg.ID, update); err != nil {
		e.mu.Lock()
		if epoch == e.epoch {
			e.pending = false
		}
		e.mu.Unlock()
		e.logger.Warn("segment save failed", slog.Int64(logging.FieldSegmentID, seg.ID), logging.Error(err))
		return e.State(), fmt.Errorf("save segment %d: %w", seg.ID, err)
	}
	e.logger.Info("segment saved",
		slog.Int64(logging.FieldSegmentID, seg.ID),
		slog.String("status", string(update.ResultStatus())),
	)

	segments, fetchErr := e.backend.ListSegments(ctx, user)

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return e.stateLocked(), apperrors.ErrStaleResponse
	}
	e.pending = false
	if e.currentIDLocked() != seg.ID {
		return e.stateLocked(), apperrors.ErrStaleResponse
	}

	if fetchErr != nil {
		e.queue.SetStatus(seg.ID, update.ResultStatus())
		e.queueErr = fmt.Errorf("%w: %w", apperrors.ErrQueueUnavailable, fetchErr)
		e.clearDraftLocked()
		if e.cursor.Advance() {
			e.anchor.Save(ctx, e.currentIDLocked())
		}
		e.logger.Error("queue refresh after save failed", slog.Int64(logging.FieldSegmentID, seg.ID), logging.Error(fetchErr))
		return e.stateLocked(), fmt.Errorf("segment %d saved, but %w", seg.ID, e.queueErr)
	}

	e.applyQueueLocked(ctx, segments, false)
	stillHere := e.currentIDLocked() == seg.ID
	e.clearDraftLocked()
	if stillHere && e.cursor.Advance() {
		e.anchor.Save(ctx, e.currentIDLocked())
	}
	return e.stateLocked(), nil
}

// Finish closes the batch from the last segment: it saves a pending
// transcription, journals the batch, clears the anchor and loads a new queue.
// A failed save aborts before anything else changes.
func (e *Engine) Finish(ctx context.Context) (State, error) {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return e.State(), apperrors.ErrMutationPending
	}
	if !e.cursor.AtEnd() {
		e.mu.Unlock()
		return e.State(), apperrors.ErrNotAtEnd
	}
	seg, _ := e.currentLocked()
	var update domain.SegmentUpdate
	save := e.session.SegmentID() == seg.ID && e.session.Draft().HasTranscription()
	if save {
		var err error
		if update, err = e.buildLocked(seg, domain.EditingSession.BuildUpdate); err != nil {
			e.mu.Unlock()
			return e.State(), err
		}
	}
	e.pending = true
	epoch, user := e.epoch, e.userID
	e.mu.Unlock()

	if save {
		if err := e.backend.UpdateSegment(ctx, seg.ID, update); err != nil {
			e.mu.Lock()
			if epoch == e.epoch {
				e.pending = false
			}
			e.mu.Unlock()
			e.logger.Warn("final save failed, batch kept", slog.Int64(logging.FieldSegmentID, seg.ID), logging.Error(err))
			return e.State(), fmt.Errorf("save segment %d: %w", seg.ID, err)
		}
	}

	e.mu.Lock()
	if epoch != e.epoch {
		e.mu.Unlock()
		return e.State(), apperrors.ErrStaleResponse
	}
	if save {
		e.queue.SetStatus(seg.ID, update.ResultStatus())
	}
	summary := e.summaryLocked(seg.ID)
	e.mu.Unlock()

	e.recordBatch(ctx, summary)
	e.anchor.Clear(ctx)

	segments, err := e.backend.ListSegments(ctx, user)

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return e.stateLocked(), apperrors.ErrStaleResponse
	}
	e.pending = false
	e.clearDraftLocked()
	e.loaded = false
	if err != nil {
		e.queue.Reset()
		e.cursor.Place(0, domain.Selection{})
		e.queueErr = fmt.Errorf("%w: %w", apperrors.ErrQueueUnavailable, err)
		e.logger.Error("new batch fetch failed", logging.Error(err))
		return e.stateLocked(), e.queueErr
	}
	e.cursor.Place(0, domain.Selection{})
	e.applyQueueLocked(ctx, segments, true)
	e.logger.Info("batch finished", slog.Int("done", summary.Done), slog.Int("invalid", summary.Invalid), slog.Int("next_batch", len(segments)))
	return e.stateLocked(), nil
}

func (e *Engine) recordBatch(ctx context.Context, summary domain.BatchSummary) {
	if e.journal == nil {
		return
	}
	if _, err := e.journal.RecordBatch(ctx, summary); err != nil {
		e.logger.Warn("batch journal write failed", logging.Error(err))
	}
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) buildLocked(seg domain.Segment, build func(domain.EditingSession) (domain.SegmentUpdate, error)) (domain.SegmentUpdate, error) {
	session := e.session
	if session.SegmentID() != seg.ID {
		session = domain.EditingSession{}
	}
	update, err := build(session)
	if err != nil {
		return domain.SegmentUpdate{}, err
	}
	if err := update.Validate(); err != nil {
		return domain.SegmentUpdate{}, err
	}
	return update, nil
}

func (e *Engine) summaryLocked(lastID int64) domain.BatchSummary {
	counts := e.queue.Counts()
	names := make([]string, 0, 4)
	seen := map[string]struct{}{}
	for _, s := range e.queue.Segments() {
		if _, ok := seen[s.AudioName]; ok || s.AudioName == "" {
			continue
		}
		seen[s.AudioName] = struct{}{}
		names = append(names, s.AudioName)
	}
	return domain.BatchSummary{
		UserID:        e.userID,
		StartedAt:     e.batchStarted,
		FinishedAt:    e.clock.Now(),
		Total:         e.queue.Len(),
		Done:          counts[domain.StatusDone],
		Invalid:       counts[domain.StatusInvalid],
		LastSegmentID: lastID,
		AudioNames:    names,
	}
}

func (e *Engine) clearDraftLocked() {
	e.session = domain.EditingSession{}
	e.detail = domain.SegmentDetail{}
	e.detailErr = nil
}

func (e *Engine) currentLocked() (domain.Segment, bool) {
	return e.queue.At(e.cursor.Position())
}

func (e *Engine) currentIDLocked() int64 {
	seg, ok := e.currentLocked()
	if !ok {
		return 0
	}
	return seg.ID
}

func (e *Engine) stateLocked() State {
	return State{
		UserID:      e.userID,
		Segments:    e.queue.Segments(),
		Generation:  e.queue.Generation(),
		Position:    e.cursor.Position(),
		Window:      e.cursor.Window(),
		Finished:    e.cursor.Finished(),
		Pending:     e.pending,
		QueueErr:    e.queueErr,
		DetailErr:   e.detailErr,
		Detail:      e.detail,
		DraftLoaded: e.session.Loaded(),
		Draft:       e.session.Draft(),
		CanCommit:   e.session.CanCommit(),
	}
}
