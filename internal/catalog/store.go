package catalog

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Sting421/hkotisk-client/internal/domain/product"
	"github.com/Sting421/hkotisk-client/internal/gateway"
	"github.com/Sting421/hkotisk-client/internal/notify"
	"github.com/Sting421/hkotisk-client/internal/sequence"
)

// UnauthorizedHandler reacts to a server-signalled session rejection.
type UnauthorizedHandler interface {
	OnUnauthorized()
}

// Store exclusively owns the product snapshot. Every successful fetch
// replaces the snapshot wholesale; queries are pure read-time projections.
type Store struct {
	backend  Backend
	sess     UnauthorizedHandler
	notifier notify.Notifier
	lg       *zap.Logger

	defaultThreshold int

	seq sequence.Tracker

	mu       sync.RWMutex
	products []product.Product
	closed   bool
}

// NewStore builds a Store over the given backend. defaultThreshold is the
// client-side low-stock threshold applied to records the server reports
// without one.
func NewStore(backend Backend, sess UnauthorizedHandler, notifier notify.Notifier, defaultThreshold int, lg *zap.Logger) *Store {
	if defaultThreshold <= 0 {
		defaultThreshold = product.DefaultLowStockThreshold
	}
	return &Store{
		backend:          backend,
		sess:             sess,
		notifier:         notifier,
		defaultThreshold: defaultThreshold,
		lg:               lg,
	}
}

// Activate loads the initial snapshot. A remote backend with no session
// returns ErrLoginRequired, which is not a user-visible failure: the login
// redirect has already been requested.
func (s *Store) Activate(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh re-fetches the full catalog and replaces the snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.seq.Next()
	list, err := s.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrLoginRequired) {
			s.fail(gateway.ActionLoadProducts, err)
		}
		return err
	}
	s.apply(seq, list)
	return nil
}

// Add stores a new product through the backend and applies the confirmed
// post-mutation catalog. Records violating the variant invariant are rejected
// before anything is sent.
func (s *Store) Add(ctx context.Context, p product.Product) error {
	if err := p.Validate(); err != nil {
		s.notifier.Integrity(err.Error())
		return err
	}
	seq := s.seq.Next()
	list, err := s.backend.Create(ctx, p)
	if err != nil {
		s.fail(gateway.ActionAddProduct, err)
		return err
	}
	s.apply(seq, list)
	return nil
}

// Update replaces an existing product through the backend.
func (s *Store) Update(ctx context.Context, p product.Product) error {
	if err := p.Validate(); err != nil {
		s.notifier.Integrity(err.Error())
		return err
	}
	seq := s.seq.Next()
	list, err := s.backend.Update(ctx, p)
	if err != nil {
		s.fail(gateway.ActionUpdateProduct, err)
		return err
	}
	s.apply(seq, list)
	return nil
}

// Delete removes a product through the backend.
func (s *Store) Delete(ctx context.Context, id string) error {
	seq := s.seq.Next()
	list, err := s.backend.Delete(ctx, id)
	if err != nil {
		s.fail(gateway.ActionDeleteProduct, err)
		return err
	}
	s.apply(seq, list)
	return nil
}

// Products returns a copy of the current snapshot.
func (s *Store) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dup := make([]product.Product, len(s.products))
	copy(dup, s.products)
	return dup
}

// GetByID returns the product with the given ID.
func (s *Store) GetByID(id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return product.Product{}, product.ErrNotFound
}

// LowStock returns the products whose stock level has fallen to or below
// their threshold. The boundary value is included.
func (s *Store) LowStock() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []product.Product
	for _, p := range s.products {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

// Filter projects the snapshot through the given criteria without mutating it.
func (s *Store) Filter(f product.Filter) []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []product.Product
	for _, p := range s.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Close disposes the store. Fetches still in flight complete but their
// results are discarded: nothing writes to a disposed store.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// apply installs a fetched snapshot if seq is still the latest issued fetch
// and the store has not been disposed. Malformed records are rejected
// per-record and reported; the valid remainder forms the snapshot.
func (s *Store) apply(seq uint64, list []product.Product) {
	kept := make([]product.Product, 0, len(list))
	for _, p := range list {
		if err := p.Validate(); err != nil {
			s.notifier.Integrity(err.Error())
			continue
		}
		if p.LowStockThreshold <= 0 {
			p.LowStockThreshold = s.defaultThreshold
		}
		kept = append(kept, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !s.seq.Current(seq) {
		s.lg.Debug("Discarding stale catalog fetch",
			zap.Uint64("seq", seq), zap.Uint64("latest", s.seq.Latest()))
		return
	}
	s.products = kept
}

// fail classifies a backend error: an authorization rejection tears down the
// session, anything else surfaces as a failure signal for the action.
func (s *Store) fail(action string, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.sess.OnUnauthorized()
		return
	}
	s.lg.Warn("Catalog operation failed", zap.String("action", action), zap.Error(err))
	s.notifier.Failure(action)
}
