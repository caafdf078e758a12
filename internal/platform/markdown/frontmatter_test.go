package markdown_test

import (
	"strings"
	"testing"
	"time"

	"segdesk/internal/platform/markdown"
)

type noteMeta struct {
	ID         string    `yaml:"id"`
	FinishedAt time.Time `yaml:"finished_at"`
	Done       int       `yaml:"done"`
}

func TestRenderThenSplitKeepsTypedFields(t *testing.T) {
	t.Parallel()
	in := noteMeta{ID: "b-1", FinishedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), Done: 4}
	note, err := markdown.Render(in, "# Batch\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(note, "---\n") {
		t.Fatalf("expected frontmatter block, got %q", note)
	}
	var out noteMeta
	body, err := markdown.Split(note, &out)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if out.ID != "b-1" || out.Done != 4 || !out.FinishedAt.Equal(in.FinishedAt) {
		t.Fatalf("unexpected meta %+v", out)
	}
	if body != "# Batch\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSplitWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	var out noteMeta
	body, err := markdown.Split("plain text", &out)
	if err != nil || body != "plain text" || out.ID != "" {
		t.Fatalf("unexpected split result %q %+v %v", body, out, err)
	}
}

func TestSplitRejectsUnclosedFrontmatter(t *testing.T) {
	t.Parallel()
	var out noteMeta
	if _, err := markdown.Split("---\nid: x\n", &out); err == nil {
		t.Fatalf("expected error for unclosed frontmatter")
	}
}
