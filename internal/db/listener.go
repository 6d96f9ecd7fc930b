package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// NewNotesListener opens a dedicated LISTEN connection on NotesChannel.
// Connection state changes are logged; after a reconnect pq delivers a nil
// notification on Notify.
func NewNotesListener(dsn string, log *zap.Logger) (*pq.Listener, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("notes listener connected")
		case pq.ListenerEventDisconnected:
			log.Warn("notes listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			log.Info("notes listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Error("notes listener connection attempt failed", zap.Error(err))
		}
	})
	if err := l.Listen(NotesChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", NotesChannel, err)
	}
	return l, nil
}

// Pinger checks a connection is alive. *pq.Listener implements it.
type Pinger interface {
	Ping() error
}

// StartListenerKeepAlive pings the listener connection every interval so a
// silently dropped connection is noticed and re-established.
func StartListenerKeepAlive(
	ctx context.Context,
	p Pinger,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Ping(); err != nil {
					log.Error("notes listener ping failed", zap.Error(err))
				}
			}
		}
	}()
}
