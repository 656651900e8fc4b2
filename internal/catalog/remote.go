package catalog

import (
	"context"

	"github.com/Sting421/hkotisk-client/internal/domain/product"
	"github.com/Sting421/hkotisk-client/internal/session"
)

// Gateway is the slice of the API client the remote backend needs.
type Gateway interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) error
	UpdateProduct(ctx context.Context, p product.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// TokenSource reports whether a session currently exists.
type TokenSource interface {
	Token() (string, bool)
}

// RemoteBackend serves the catalog from the hkotisk API. Mutations never
// predict the server's post-mutation state: each one calls the gateway and,
// only on confirmed success, re-fetches the full catalog.
type RemoteBackend struct {
	gw     Gateway
	tokens TokenSource
	nav    session.Navigator
}

var _ Backend = (*RemoteBackend)(nil)

// NewRemoteBackend builds a RemoteBackend over the given gateway and session.
func NewRemoteBackend(gw Gateway, tokens TokenSource, nav session.Navigator) *RemoteBackend {
	return &RemoteBackend{gw: gw, tokens: tokens, nav: nav}
}

// Load fetches the catalog. With no session it does not fetch at all: it
// emits the navigate-to-login intent and returns ErrLoginRequired.
func (b *RemoteBackend) Load(ctx context.Context) ([]product.Product, error) {
	if _, ok := b.tokens.Token(); !ok {
		if b.nav != nil {
			b.nav.GoToLogin()
		}
		return nil, ErrLoginRequired
	}
	return b.gw.ListProducts(ctx)
}

// Create sends the product to the server, then re-fetches.
func (b *RemoteBackend) Create(ctx context.Context, p product.Product) ([]product.Product, error) {
	if err := b.gw.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return b.gw.ListProducts(ctx)
}

// Update sends the changed product to the server, then re-fetches.
func (b *RemoteBackend) Update(ctx context.Context, p product.Product) ([]product.Product, error) {
	if err := b.gw.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return b.gw.ListProducts(ctx)
}

// Delete removes the product on the server, then re-fetches.
func (b *RemoteBackend) Delete(ctx context.Context, id string) ([]product.Product, error) {
	if err := b.gw.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return b.gw.ListProducts(ctx)
}
