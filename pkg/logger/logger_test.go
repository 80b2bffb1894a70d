package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuildFallsBackToInfo(t *testing.T) {
	l, done := New("not-a-level", true)
	defer done()
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled for an unknown level")
	}
	if !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be enabled")
	}
}

func TestNewWithRotateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, done := NewWithRotate("debug", true, path)
	l.Info("hello")
	done()
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled")
	}
}
