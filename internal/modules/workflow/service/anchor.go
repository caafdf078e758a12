package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	workflowout "segdesk/internal/modules/workflow/port/out"
	"segdesk/internal/platform/logging"
)

// AnchorKey is the key the last active segment id is stored under.
const AnchorKey = "current_chunk"

// Anchor remembers the last active segment between runs. Storage failures
// only cost resume convenience, so they are logged and swallowed.
type Anchor struct {
	store  workflowout.KVStore
	logger *slog.Logger
}

func NewAnchor(store workflowout.KVStore, logger *slog.Logger) *Anchor {
	return &Anchor{store: store, logger: logging.Component(logger, "anchor")}
}

// Load returns the remembered segment id. Missing, unreadable and malformed
// values all read as "no anchor".
func (a *Anchor) Load(ctx context.Context) (int64, bool) {
	if a == nil || a.store == nil {
		return 0, false
	}
	raw, found, err := a.store.Get(ctx, AnchorKey)
	if err != nil {
		a.logger.Warn("anchor read failed", logging.Error(err))
		return 0, false
	}
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		a.logger.Debug("ignoring malformed anchor", slog.String("value", raw))
		return 0, false
	}
	return id, true
}

func (a *Anchor) Save(ctx context.Context, segmentID int64) {
	if a == nil || a.store == nil || segmentID <= 0 {
		return
	}
	if err := a.store.Set(ctx, AnchorKey, strconv.FormatInt(segmentID, 10)); err != nil {
		a.logger.Warn("anchor write failed", slog.Int64(logging.FieldSegmentID, segmentID), logging.Error(err))
	}
}

func (a *Anchor) Clear(ctx context.Context) {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Remove(ctx, AnchorKey); err != nil {
		a.logger.Warn("anchor clear failed", logging.Error(err))
	}
}
