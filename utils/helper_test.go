package utils_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmdatafocus/picklist_bridge/utils"
)

func TestTruncateString(t *testing.T) {
	if got := utils.TruncateString("short", 50); got != "short" {
		t.Fatalf("value under the limit must pass through, got %q", got)
	}
	if got := utils.TruncateString(strings.Repeat("a", 60), 50); len(got) != 50 {
		t.Fatalf("expected 50 chars, got %d", len(got))
	}
	if got := utils.TruncateString("anything", 0); got != "anything" {
		t.Fatalf("non-positive width must pass through, got %q", got)
	}
}

func TestTruncateString_RuneBoundary(t *testing.T) {
	// A multi-byte rune straddling the width boundary must survive or be cut
	// whole, never split into invalid bytes.
	value := strings.Repeat("a", 49) + "é"
	got := utils.TruncateString(value, 50)
	if got != value {
		t.Fatalf("50 characters fit a width of 50, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}

	accented := strings.Repeat("é", 60)
	got = utils.TruncateString(accented, 50)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 50 {
		t.Fatalf("expected 50 characters, got %d", n)
	}
}
