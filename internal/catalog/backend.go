// Package catalog holds the product snapshot and its derived read models.
// The snapshot lives behind one Store; where the data comes from is a
// pluggable Backend so the durable local mode and the networked mode are
// interchangeable strategies rather than a compile-time fork.
package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/Sting421/hkotisk-client/internal/domain/product"
)

// ErrLoginRequired is returned by the remote backend when activation finds no
// session. It is not a failure to report; the navigate-to-login intent has
// already been emitted.
var ErrLoginRequired = errors.New("login required")

// Backend is a catalog data source. Every method returns the full
// post-operation catalog: the store replaces its snapshot wholesale and never
// predicts server state itself.
type Backend interface {
	// Load produces the initial catalog, seeding or fetching as the mode requires.
	Load(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, p product.Product) ([]product.Product, error)
	Update(ctx context.Context, p product.Product) ([]product.Product, error)
	Delete(ctx context.Context, id string) ([]product.Product, error)
}
