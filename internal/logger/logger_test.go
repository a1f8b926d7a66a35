package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contextiq/contextiq-cli/internal/logger"
	"go.uber.org/zap"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	log, err := logger.New(path, "debug")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("refresh applied", zap.Int("documents", 3))
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(b)
	if !strings.Contains(line, `"message":"refresh applied"`) || !strings.Contains(line, `"documents":3`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logger.New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
