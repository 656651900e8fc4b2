// Package orders holds the order snapshot and mediates status updates. The
// snapshot is replaced wholesale on every successful fetch; the push channel
// only signals staleness and never carries authoritative data.
package orders

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Sting421/hkotisk-client/internal/domain/order"
	"github.com/Sting421/hkotisk-client/internal/gateway"
	"github.com/Sting421/hkotisk-client/internal/notify"
	"github.com/Sting421/hkotisk-client/internal/sequence"
)

// Gateway is the slice of the API client the order store needs.
type Gateway interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, status order.Status) error
}

// UnauthorizedHandler reacts to a server-signalled session rejection.
type UnauthorizedHandler interface {
	OnUnauthorized()
}

// Store exclusively owns the order snapshot, kept in server-reported
// sequence. It also carries the transient new-activity flag the view uses for
// presentation emphasis.
type Store struct {
	gw       Gateway
	sess     UnauthorizedHandler
	notifier notify.Notifier
	lg       *zap.Logger

	seq sequence.Tracker

	mu          sync.RWMutex
	orders      []order.Order
	newActivity bool
	closed      bool
}

// NewStore builds an order Store over the given gateway.
func NewStore(gw Gateway, sess UnauthorizedHandler, notifier notify.Notifier, lg *zap.Logger) *Store {
	return &Store{gw: gw, sess: sess, notifier: notifier, lg: lg}
}

// Refresh fetches the full order list and replaces the snapshot. A completion
// that is no longer the latest issued fetch is discarded, so a slow early
// response cannot overwrite a faster later one. Orders carrying a status
// outside the closed set are rejected per-record and reported. The
// new-activity flag is cleared only when the applied fetch completes.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.seq.Next()
	list, err := s.gw.ListOrders(ctx)
	if err != nil {
		s.fail(gateway.ActionLoadOrders, err)
		return err
	}

	kept := make([]order.Order, 0, len(list))
	for _, o := range list {
		if _, err := order.ParseStatus(string(o.Status)); err != nil {
			s.notifier.Integrity(err.Error())
			continue
		}
		kept = append(kept, o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if !s.seq.Current(seq) {
		s.lg.Debug("Discarding stale order fetch",
			zap.Uint64("seq", seq), zap.Uint64("latest", s.seq.Latest()))
		return nil
	}
	s.orders = kept
	s.newActivity = false
	return nil
}

// SetStatus sends a status transition to the server. The user's action
// acknowledges pending activity, so the flag clears immediately; the local
// order is never mutated. The confirmed state arrives only with the next
// refresh, so a read in between may show the pre-call status.
func (s *Store) SetStatus(ctx context.Context, orderID int64, status order.Status) error {
	s.mu.Lock()
	s.newActivity = false
	s.mu.Unlock()

	if err := s.gw.SetOrderStatus(ctx, orderID, status); err != nil {
		s.fail(gateway.ActionSetOrderStatus, err)
		return err
	}
	return nil
}

// Orders returns a copy of the snapshot in server-reported sequence.
func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dup := make([]order.Order, len(s.orders))
	copy(dup, s.orders)
	return dup
}

// Get returns the order with the given ID.
func (s *Store) Get(orderID int64) (order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return order.Order{}, false
}

// MarkActivity raises the new-activity flag. Called by the push listener for
// every inbound frame.
func (s *Store) MarkActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.newActivity = true
}

// HasNewActivity reports whether order activity arrived since the user last
// acted on or saw a fresh order list.
func (s *Store) HasNewActivity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newActivity
}

// Close disposes the store; in-flight fetches complete but are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Store) fail(action string, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.sess.OnUnauthorized()
		return
	}
	s.lg.Warn("Order operation failed", zap.String("action", action), zap.Error(err))
	s.notifier.Failure(action)
}
