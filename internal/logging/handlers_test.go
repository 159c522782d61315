package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestTeeHandlerDropsNil(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if TeeHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout enabled for debug")
	}
	logger := slog.New(h).With("k", "v")
	logger.Debug("quiet")
	logger.Info("loud")

	if strings.Contains(infoBuf.String(), "quiet") || !strings.Contains(infoBuf.String(), "loud") {
		t.Fatalf("unexpected info output %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "quiet") || !strings.Contains(debugBuf.String(), `"k":"v"`) {
		t.Fatalf("unexpected debug output %q", debugBuf.String())
	}
}

func TestRunIDHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunIDHandler(slog.NewJSONHandler(&buf, nil), "run-123")).With("extra", "value")
	logger.Info("test message")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-123"`) || !strings.Contains(out, `"extra":"value"`) {
		t.Fatalf("unexpected output %s", out)
	}
	if _, ok := newRunIDHandler(nil, "x").(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil base")
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false)).WithGroup("section").With("index", 1)
	logger.Info("grouped", slog.Group("file", slog.String("name", "a.png")))

	out := buf.String()
	if !strings.Contains(out, "section.index=1") || !strings.Contains(out, "section.file.name=a.png") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(25)
	var emitted []int
	for done := 1; done <= 10; done++ {
		if s.ShouldLog(done, 10) {
			emitted = append(emitted, done)
		}
	}
	want := []int{1, 3, 5, 8, 10}
	if len(emitted) != len(want) {
		t.Fatalf("emitted %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted %v, want %v", emitted, want)
		}
	}
	if s.ShouldLog(0, 0) {
		t.Fatal("empty totals never log")
	}
	s.Reset()
	if !s.ShouldLog(1, 10) {
		t.Fatal("expected log after reset")
	}
}

func TestProgressSamplerConcurrent(t *testing.T) {
	s := NewProgressSampler(10)
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(done int) {
			defer wg.Done()
			s.ShouldLog(done, 50)
		}(i)
	}
	wg.Wait()
	if !s.ShouldLog(50, 50) {
		t.Fatal("final item must always log")
	}
}
