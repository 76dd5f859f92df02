package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/swpatch/swpatch/internal/logger"
)

func TestMockLogger(t *testing.T) {
	buf, restore := logger.MockLogger()
	defer restore()

	logger.Noticef("Loading archive=[%s]", "data12.v")
	logger.Debugf("State=[%s]", "Patch")

	out := buf.String()
	if !strings.Contains(out, "Loading archive=[data12.v]") {
		t.Errorf("Missing notice in %q", out)
	}
	if !strings.Contains(out, "DEBUG: State=[Patch]") {
		t.Errorf("Missing debug line in %q", out)
	}
}

func TestQuietSuppressesNotices(t *testing.T) {
	t.Setenv(logger.DebugEnv, "")
	var buf bytes.Buffer
	logger.SetLogger(logger.New(&buf, 0, false, true))
	defer logger.SetLogger(logger.NullLogger)

	logger.Noticef("hidden")
	logger.Debugf("hidden too")

	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestDebugEnv(t *testing.T) {
	t.Setenv(logger.DebugEnv, "1")
	var buf bytes.Buffer
	logger.SetLogger(logger.New(&buf, 0, false, false))
	defer logger.SetLogger(logger.NullLogger)

	logger.Debugf("visible")
	if !strings.Contains(buf.String(), "DEBUG: visible") {
		t.Errorf("Expected debug output, got %q", buf.String())
	}
}
