package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lydell2627/portfolio-sub000/internal/api"
	"github.com/Lydell2627/portfolio-sub000/internal/cms"
	"github.com/Lydell2627/portfolio-sub000/internal/config"
	"github.com/Lydell2627/portfolio-sub000/internal/contact"
	"github.com/Lydell2627/portfolio-sub000/internal/content"
	"github.com/Lydell2627/portfolio-sub000/internal/store"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) hasMessage(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e["msg"] == msg {
			return true
		}
	}
	return false
}

func (c *logCapture) workerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for _, e := range c.entries {
		if w, ok := e["worker"].(string); ok {
			names = append(names, w)
		}
	}
	return names
}

func useCapture(t *testing.T) *logCapture {
	t.Helper()
	capture := &logCapture{}
	old := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	t.Cleanup(func() { slog.SetDefault(old) })
	return capture
}

// --- Workers ---

func TestStartWorker_LaunchesGoroutineAndTracksCompletion(t *testing.T) {
	capture := useCapture(t)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	workerRan := atomic.Bool{}
	started := make(chan struct{})
	startWorker(ctx, &wg, "rate-limit-sweeper", func(ctx context.Context) {
		workerRan.Store(true)
		close(started)
		<-ctx.Done()
	})

	<-started
	cancel()
	wg.Wait()

	if !workerRan.Load() {
		t.Error("worker function was not called")
	}
	if !capture.hasMessage("worker started") || !capture.hasMessage("worker stopped") {
		t.Error("expected worker started and stopped log messages")
	}
	for _, name := range capture.workerNames() {
		if name != "rate-limit-sweeper" {
			t.Errorf("worker = %q, want rate-limit-sweeper", name)
		}
	}
}

func TestStartWorker_RespectsContextCancellation(t *testing.T) {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	startWorker(ctx, &wg, "cancel-test", func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("worker did not respond to context cancellation")
	}

	wg.Wait()
}

func TestSweep_StopsOnCancel(t *testing.T) {
	l := api.NewRateLimiter(1, time.Millisecond)
	l.Allow("203.0.113.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep(ctx, l, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not return after cancel")
	}

	// The swept bucket is gone, so the client has its full burst again.
	if ok, _ := l.Allow("203.0.113.1"); !ok {
		t.Error("request denied after sweep")
	}
}

// --- Logging ---

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LogConfig{Level: "info", Format: "json"}).Info("hello", "k", "v")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json format output = %q: %v", buf.String(), err)
	}

	buf.Reset()
	newLogger(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello k=v") {
		t.Errorf("text format output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, config.LogConfig{Level: "warn"}).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

// --- Wiring ---

func TestNewSource(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		cfg := &config.Config{CMS: config.CMSConfig{Provider: config.CMSProviderNone}}
		src, closeFn, err := newSource(cfg)
		if err != nil {
			t.Fatalf("newSource() error = %v", err)
		}
		if _, ok := src.(content.EmptySource); !ok {
			t.Errorf("source = %T, want content.EmptySource", src)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close error = %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{
			CMS:      config.CMSConfig{Provider: config.CMSProviderSQLite},
			Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "content.db")},
		}
		src, closeFn, err := newSource(cfg)
		if err != nil {
			t.Fatalf("newSource() error = %v", err)
		}
		if _, ok := src.(*store.SQLiteStore); !ok {
			t.Errorf("source = %T, want *store.SQLiteStore", src)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close error = %v", err)
		}
	})

	t.Run("sanity", func(t *testing.T) {
		cfg := &config.Config{CMS: config.CMSConfig{
			Provider:   config.CMSProviderSanity,
			ProjectID:  "abc123",
			Dataset:    "production",
			APIVersion: "2024-01-01",
		}}
		src, _, err := newSource(cfg)
		if err != nil {
			t.Fatalf("newSource() error = %v", err)
		}
		if _, ok := src.(*cms.Client); !ok {
			t.Errorf("source = %T, want *cms.Client", src)
		}
	})

	t.Run("sanity without project", func(t *testing.T) {
		cfg := &config.Config{CMS: config.CMSConfig{Provider: config.CMSProviderSanity, Dataset: "production"}}
		if _, _, err := newSource(cfg); err == nil {
			t.Error("expected error without a project id")
		}
	})
}

func TestNewNotifier(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	if n := newNotifier(config.ContactConfig{WebhookURL: "https://hooks.example.com/x"}, logger); n == nil {
		t.Fatal("nil notifier")
	} else if _, ok := n.(*contact.WebhookNotifier); !ok {
		t.Errorf("notifier = %T, want *contact.WebhookNotifier", n)
	}

	var buf bytes.Buffer
	n := newNotifier(config.ContactConfig{}, slog.New(slog.NewJSONHandler(&buf, nil)))
	if _, ok := n.(*contact.LogNotifier); !ok {
		t.Errorf("notifier = %T, want *contact.LogNotifier", n)
	}
	if !strings.Contains(buf.String(), "no contact webhook configured") {
		t.Errorf("missing warning, log = %q", buf.String())
	}
}

func TestNewDispatcher(t *testing.T) {
	n := contact.NewLogNotifier(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	d := newDispatcher(config.ContactConfig{Endpoint: "https://forms.example.com/submit"}, n)
	if _, ok := d.(*contact.HTTPDispatcher); !ok {
		t.Errorf("dispatcher = %T, want *contact.HTTPDispatcher", d)
	}

	d = newDispatcher(config.ContactConfig{}, n)
	if _, ok := d.(*contact.NotifierDispatcher); !ok {
		t.Errorf("dispatcher = %T, want *contact.NotifierDispatcher", d)
	}
}
