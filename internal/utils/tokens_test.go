package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextiq/contextiq-cli/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		min  int
	}{
		{"empty", "", 0},
		{"simple", "hello world", 2},
		{"long", strings.Repeat("a", 4000), 900}, // heuristic ~ 1 tok ≈ 4 chars
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got < c.min {
			t.Errorf("%s: got %d < min %d", c.name, got, c.min)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := utils.Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	got := utils.Truncate("a long document title", 6)
	if got != "a lon…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if utils.Truncate("x", 0) != "" {
		t.Fatalf("expected empty for zero width")
	}
}

func TestSafeWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "state.json")
	if err := utils.SafeWriteFile(p, []byte("one"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("unexpected content: %q", b)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestSafeWriteFileAppliesPermIgnoringStaleTemp(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "session.json")
	if err := os.WriteFile(p+".tmp", []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode: %v", info.Mode().Perm())
	}
	b, err := os.ReadFile(p + ".tmp")
	if err != nil || string(b) != "stale" {
		t.Fatalf("unrelated file touched: %q %v", b, err)
	}
}
