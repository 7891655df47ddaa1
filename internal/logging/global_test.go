package logging

import (
	"os"
	"testing"
)

func resetGlobal() {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()
}

func TestGlobal(t *testing.T) {
	resetGlobal()

	logger := Global()
	if logger == nil {
		t.Fatal("Global() returned nil")
	}
	if Global() != logger {
		t.Error("Global() should return the same no-op logger on repeat calls")
	}

	logger.Info("test message")
}

func TestSetGlobal(t *testing.T) {
	resetGlobal()
	defer SetGlobal(nil)

	logger, err := New(&Config{Level: LevelInfo, LogDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	SetGlobal(logger)

	if Global() != logger {
		t.Error("Global() should return the logger set by SetGlobal()")
	}
}

func TestOrGlobal(t *testing.T) {
	resetGlobal()

	l := NewNoop()
	if OrGlobal(l) != l {
		t.Error("OrGlobal should return a non-nil logger unchanged")
	}
	if OrGlobal(nil) != Global() {
		t.Error("OrGlobal(nil) should return the global logger")
	}
}

func TestInitGlobal(t *testing.T) {
	resetGlobal()

	if err := InitGlobal(&Config{Level: LevelInfo, LogDir: t.TempDir()}); err != nil {
		t.Fatalf("InitGlobal() error = %v", err)
	}

	Global().Info("global info")
	Global().Debug("global debug")
	Global().Warn("global warn")

	path := Global().LogPath()
	if err := CloseGlobal(); err != nil {
		t.Fatalf("CloseGlobal() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if len(content) == 0 {
		t.Error("global logger should have written to its file")
	}
}
