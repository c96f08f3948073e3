package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenelayout/pkg/scene"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Info("aligned scene", "objects", 3)
	logger.Debug("hidden")

	out := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("log line should start with a HH:MM:SS.ms timestamp: %q", out)
	}
	if !strings.Contains(out, "objects=3") {
		t.Errorf("log line should carry key/value pairs: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Aligned 3 objects")

	if !regexp.MustCompile(`Aligned 3 objects \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default()")
	}
	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("attached logger not returned")
	}
}

// auditLog runs audit over a clean layout and returns what the CLI logged.
func auditLog(t *testing.T, extra ...string) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "clean.layout.json")
	l := scene.Layout{Objects: []scene.Placement{
		{Name: "desk", Position: [3]float64{0, 0.5, 0}, Size: [3]float64{1, 1, 1}},
		{Name: "shelf", Position: [3]float64{3, 0.5, 0}, Size: [3]float64{1, 1, 1}},
	}}
	if err := scene.WriteLayoutFile(l, path); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	args := append([]string{"audit", path, "--json"}, extra...)
	if err := New(&buf, LogInfo).Execute(context.Background(), args); err != nil {
		t.Fatalf("audit: %v", err)
	}
	return buf.String()
}

func TestVerboseFlag(t *testing.T) {
	if out := auditLog(t); strings.Contains(out, "audit finished") {
		t.Errorf("debug output without --verbose:\n%s", out)
	}
	for _, flag := range []string{"--verbose", "-v"} {
		out := auditLog(t, flag)
		if !strings.Contains(out, "audit finished") || !strings.Contains(out, "audited layout") {
			t.Errorf("%s should enable CLI and runner debug lines:\n%s", flag, out)
		}
	}
}

func TestServeLogsShutdown(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := New(&buf, LogInfo).Execute(ctx, []string{"serve", "--addr", "127.0.0.1:0", "-v"})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.Contains(buf.String(), "shutting down") {
		t.Errorf("serve should log through the CLI logger:\n%s", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{context.Canceled, 130},
		{context.DeadlineExceeded, 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
