package slug_test

import (
	"strings"
	"testing"

	"segdesk/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"  Reviewer 42 ":    "reviewer-42",
		"call_a/part#3.wav": "call-a-part-3-wav",
		"!!!":               "anonymous",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
	if got := slug.Make(strings.Repeat("ab-", 40)); len(got) > 48 || strings.HasSuffix(got, "-") {
		t.Fatalf("expected truncated slug, got %q", got)
	}
}
