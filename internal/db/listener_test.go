package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fakePinger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePinger) Ping() error {
	f.calls.Add(1)
	return f.err
}

// syncBuffer guards a bytes.Buffer shared between the logger and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartListenerKeepAlive_Pings(t *testing.T) {
	p := &fakePinger{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartListenerKeepAlive(ctx, p, 10*time.Millisecond, zap.NewNop())

	time.Sleep(200 * time.Millisecond)
	cancel()

	if p.calls.Load() == 0 {
		t.Error("expected at least one ping")
	}
}

func TestStartListenerKeepAlive_ErrorLogged(t *testing.T) {
	p := &fakePinger{err: errors.New("conn closed")}

	var buf syncBuffer
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&buf),
		zapcore.ErrorLevel,
	)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartListenerKeepAlive(ctx, p, 10*time.Millisecond, logger)

	time.Sleep(200 * time.Millisecond)
	cancel()

	out := buf.String()
	if !strings.Contains(out, "notes listener ping failed") {
		t.Errorf("expected error log, got:\n%s", out)
	}
}

func TestStartListenerKeepAlive_CancelBeforeTicker(t *testing.T) {
	p := &fakePinger{}
	ctx, cancel := context.WithCancel(context.Background())

	StartListenerKeepAlive(ctx, p, 100*time.Millisecond, zap.NewNop())
	cancel()

	time.Sleep(150 * time.Millisecond)

	if n := p.calls.Load(); n != 0 {
		t.Errorf("expected no pings after cancel, got %d", n)
	}
}
