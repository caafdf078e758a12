package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"segdesk/internal/modules/journal/domain"
	journalout "segdesk/internal/modules/journal/port/out"
	apperrors "segdesk/internal/platform/errors"
	"segdesk/internal/platform/markdown"
	"segdesk/internal/platform/slug"
)

// MarkdownBatchStore writes one note per finished batch under
// <dir>/YYYY/MM/DD/.
type MarkdownBatchStore struct {
	dir string
}

func NewMarkdownBatchStore(dir string) journalout.BatchStore {
	return &MarkdownBatchStore{dir: dir}
}

type batchMeta struct {
	SchemaVersion int       `yaml:"schema_version"`
	ID            string    `yaml:"id"`
	UserID        string    `yaml:"user_id"`
	StartedAt     time.Time `yaml:"started_at"`
	FinishedAt    time.Time `yaml:"finished_at"`
	DurationMin   int       `yaml:"duration_minutes"`
	Total         int       `yaml:"total"`
	Done          int       `yaml:"done"`
	Invalid       int       `yaml:"invalid"`
	LastSegmentID int64     `yaml:"last_segment_id"`
	AudioNames    []string  `yaml:"audio_names,omitempty"`
}

func (s *MarkdownBatchStore) Save(_ context.Context, batch domain.Batch) (string, error) {
	date := batch.FinishedAt
	dir := filepath.Join(s.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(batch.UserID), shortID(batch.ID))
	path := filepath.Join(dir, name)

	meta := batchMeta{
		SchemaVersion: domain.SchemaVersion,
		ID:            batch.ID,
		UserID:        batch.UserID,
		StartedAt:     batch.StartedAt,
		FinishedAt:    batch.FinishedAt,
		DurationMin:   batch.DurationMin,
		Total:         batch.Total,
		Done:          batch.Done,
		Invalid:       batch.Invalid,
		LastSegmentID: batch.LastSegmentID,
		AudioNames:    batch.AudioNames,
	}
	rendered, err := markdown.Render(meta, renderBody(batch))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write batch note: %w", err)
	}
	return path, nil
}

func (s *MarkdownBatchStore) List(_ context.Context) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, 16)
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		entry, err := readEntry(path)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Batch.FinishedAt.After(entries[j].Batch.FinishedAt)
	})
	return entries, nil
}

func (s *MarkdownBatchStore) Load(ctx context.Context, id string) (domain.Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	for _, entry := range entries {
		if entry.Batch.ID == id || strings.HasPrefix(entry.Batch.ID, id) {
			return entry, nil
		}
	}
	return domain.Entry{}, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, id)
}

func readEntry(path string) (domain.Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("read batch note %s: %w", path, err)
	}
	var meta batchMeta
	body, err := markdown.Split(string(raw), &meta)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("parse batch note %s: %w", path, err)
	}
	return domain.Entry{
		Path: path,
		Body: body,
		Batch: domain.Batch{
			ID:            meta.ID,
			UserID:        meta.UserID,
			StartedAt:     meta.StartedAt,
			FinishedAt:    meta.FinishedAt,
			DurationMin:   meta.DurationMin,
			Total:         meta.Total,
			Done:          meta.Done,
			Invalid:       meta.Invalid,
			LastSegmentID: meta.LastSegmentID,
			AudioNames:    meta.AudioNames,
		},
	}, nil
}

func renderBody(batch domain.Batch) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# Batch %s\n\n", shortID(batch.ID))
	fmt.Fprintf(&b, "- Reviewer: %s\n", batch.UserID)
	fmt.Fprintf(&b, "- Finished: %s\n", batch.FinishedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Duration: %d minutes\n", batch.DurationMin)
	fmt.Fprintf(&b, "- Last segment: %d\n\n", batch.LastSegmentID)
	b.WriteString("## Results\n\n")
	b.WriteString("| Done | Invalid | Remaining | Total |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n", batch.Done, batch.Invalid, batch.Remaining(), batch.Total)
	if len(batch.AudioNames) > 0 {
		b.WriteString("\n## Audio\n\n")
		for _, name := range batch.AudioNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
