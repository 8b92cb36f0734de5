package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/blogsphere/backend/internal/common/constants"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "api", "warning")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARNING] [api]") || !strings.Contains(out, "shown") {
		t.Errorf("expected warning line, got %q", out)
	}
}

func TestLogger_WithFieldsSortedAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "", "debug")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "abc123")
	log.WithFields(ctx, Fields{"user_id": "u1", "action": "login_success"}).Info("login success")

	out := buf.String()
	if !strings.Contains(out, "[trace_id=abc123 action=login_success user_id=u1]") {
		t.Errorf("unexpected field rendering: %q", out)
	}
}

func TestLogger_ContextUserID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "api", "info")

	ctx := context.WithValue(context.Background(), constants.TraceIDKey, "t-1")
	ctx = context.WithValue(ctx, constants.UserIDKey, "7f9c1d7e")
	log.WithFields(ctx, Fields{"action": "blog_create"}).Info("blog created")

	out := buf.String()
	if !strings.Contains(out, "[trace_id=t-1 user_id=7f9c1d7e action=blog_create]") {
		t.Errorf("unexpected field rendering: %q", out)
	}
}

func TestLogger_ShouldLog(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "", "error")

	if log.ShouldLog(DEBUG) {
		t.Error("debug should be disabled at error level")
	}
	if !log.ShouldLog(CRITICAL) {
		t.Error("critical should be enabled at error level")
	}

	log.SetLevel("debug")
	if !log.ShouldLog(DEBUG) {
		t.Error("debug should be enabled after SetLevel")
	}
}

func TestNew_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(dir, "api", "info")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	log.Info("to file")
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got != INFO {
		t.Errorf("expected INFO, got %v", got)
	}
	if got := parseLevel(" warn "); got != WARNING {
		t.Errorf("expected WARNING, got %v", got)
	}
}
