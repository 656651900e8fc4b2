// Package push maintains the live connection to the order-event channel.
// Inbound frames are signals, never payloads of truth: whatever they carry,
// the listener's only obligation is to mark activity and trigger a refresh.
package push

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sting421/hkotisk-client/internal/gateway"
)

// State is the listener's connection state.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// OrderStore is the slice of the order store the listener drives.
type OrderStore interface {
	Refresh(ctx context.Context) error
	MarkActivity()
}

// TokenSource supplies the bearer token attached at dial time.
type TokenSource interface {
	Token() (string, bool)
}

// UnauthorizedHandler reacts to a rejected handshake.
type UnauthorizedHandler interface {
	OnUnauthorized()
}

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = time.Minute
)

// Listener subscribes to the order-event websocket and reconnects with
// capped exponential backoff when the connection drops. While disconnected
// the REST poll remains the source of truth, so nothing is lost silently.
type Listener struct {
	url    string
	tokens TokenSource
	sess   UnauthorizedHandler
	orders OrderStore
	lg     *zap.Logger
	dialer *websocket.Dialer

	// backoff bounds, overridable in tests
	initialBackoff time.Duration
	maxBackoff     time.Duration

	state atomic.Int32

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewListener builds a Listener for the given websocket URL.
func NewListener(url string, tokens TokenSource, sess UnauthorizedHandler, orders OrderStore, lg *zap.Logger) *Listener {
	return &Listener{
		url:            url,
		tokens:         tokens,
		sess:           sess,
		orders:         orders,
		lg:             lg,
		dialer:         websocket.DefaultDialer,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
}

// State returns the current connection state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Run connects and consumes events until the context is cancelled. Dial and
// read failures are logged and retried with exponential backoff; the backoff
// resets after each successful open. A 403 handshake tears down the session
// and stops the listener.
func (l *Listener) Run(ctx context.Context) error {
	defer l.state.Store(int32(StateClosed))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.initialBackoff
	bo.MaxInterval = l.maxBackoff
	bo.MaxElapsedTime = 0

	for {
		l.state.Store(int32(StateConnecting))

		header := http.Header{}
		if token, ok := l.tokens.Token(); ok {
			header.Set("Authorization", "Bearer "+token)
		}

		conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusForbidden {
				l.sess.OnUnauthorized()
				return gateway.ErrUnauthorized
			}
			if ctx.Err() != nil {
				return nil
			}
			wait := bo.NextBackOff()
			l.lg.Warn("Push channel dial failed, will retry",
				zap.Error(err), zap.Duration("backoff", wait))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}

		l.setConn(conn)
		l.state.Store(int32(StateOpen))
		bo.Reset()
		l.lg.Info("Push channel open", zap.String("url", l.url))

		// Unblock the blocking read when the context is cancelled.
		watchDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				l.Close()
			case <-watchDone:
			}
		}()

		readErr := l.consume(ctx, conn)
		close(watchDone)
		l.Close()
		// The channel is down for the whole backoff wait; report it as such.
		l.state.Store(int32(StateConnecting))

		if ctx.Err() != nil {
			return nil
		}

		wait := bo.NextBackOff()
		l.lg.Warn("Push channel closed, reconnecting",
			zap.Error(readErr), zap.Duration("backoff", wait))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// consume reads frames until the connection fails. Every frame, regardless
// of payload, marks activity and triggers exactly one refresh; the payload is
// never parsed into state.
func (l *Listener) consume(ctx context.Context, conn *websocket.Conn) error {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
		l.orders.MarkActivity()
		if err := l.orders.Refresh(ctx); err != nil {
			l.lg.Warn("Push-triggered refresh failed", zap.Error(err))
		}
	}
}

// Close tears the connection down, closing the socket only if still open so
// teardown never trips over an already-closed connection.
func (l *Listener) Close() error {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (l *Listener) setConn(conn *websocket.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}
