package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/usere2211-alt/finance-dashboard/internal/config"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	logger := SetupLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn line, got %s", out)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("FINTRACK_CONFIG", "")
	t.Setenv("DATA_BACKEND", "sheets")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGracefulShutdown_RunsCleanupWhenParentDone(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	called := make(chan struct{})
	ctx, done := GracefulShutdown(parent, applog.Discard(), time.Second, func(context.Context) { close(called) })

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if ctx.Err() == nil {
		t.Error("returned context should be cancelled")
	}
	select {
	case <-called:
	default:
		t.Error("cleanup was not called")
	}
}
