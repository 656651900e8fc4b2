package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sting421/hkotisk-client/internal/domain/product"
)

// LocalBackend keeps the catalog in a single durable JSON file. Mutations
// apply synchronously in memory and write through; there is no network round
// trip and no error path beyond storage failures. An empty store is seeded
// with the demo catalog.
type LocalBackend struct {
	path string
	lg   *zap.Logger

	mu   sync.Mutex
	list []product.Product
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend stores the catalog under stateDir.
func NewLocalBackend(stateDir string, lg *zap.Logger) *LocalBackend {
	return &LocalBackend{
		path: filepath.Join(stateDir, "catalog.json"),
		lg:   lg,
	}
}

// Load reads the persisted catalog, seeding and persisting the demo catalog
// when no snapshot exists yet.
func (b *LocalBackend) Load(_ context.Context) ([]product.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		b.lg.Info("No persisted catalog, seeding demo data", zap.String("path", b.path))
		b.list = demoCatalog()
		if err := b.persistLocked(); err != nil {
			return nil, err
		}
		return b.snapshotLocked(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read catalog file")
	}

	var list []product.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "decode catalog file")
	}
	b.list = list
	return b.snapshotLocked(), nil
}

// Create assigns an ID when the product has none, appends it, and writes
// through.
func (b *LocalBackend) Create(_ context.Context, p product.Product) ([]product.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	b.list = append(b.list, p)
	if err := b.persistLocked(); err != nil {
		return nil, err
	}
	return b.snapshotLocked(), nil
}

// Update replaces the product with the matching ID and writes through.
func (b *LocalBackend) Update(_ context.Context, p product.Product) ([]product.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for i := range b.list {
		if b.list[i].ID == p.ID {
			b.list[i] = p
			found = true
			break
		}
	}
	if !found {
		return nil, product.ErrNotFound
	}
	if err := b.persistLocked(); err != nil {
		return nil, err
	}
	return b.snapshotLocked(), nil
}

// Delete removes the product with the given ID and writes through. Deleting
// an absent ID is a no-op.
func (b *LocalBackend) Delete(_ context.Context, id string) ([]product.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.list[:0]
	for _, p := range b.list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	b.list = kept
	if err := b.persistLocked(); err != nil {
		return nil, err
	}
	return b.snapshotLocked(), nil
}

func (b *LocalBackend) snapshotLocked() []product.Product {
	dup := make([]product.Product, len(b.list))
	copy(dup, b.list)
	return dup
}

// persistLocked writes the catalog via a temp file and rename so a crash
// mid-write cannot leave a torn snapshot.
func (b *LocalBackend) persistLocked() error {
	raw, err := json.MarshalIndent(b.list, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write catalog file")
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return errors.Wrap(err, "replace catalog file")
	}
	return nil
}
