package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sting421/hkotisk-client/internal/catalog"
	"github.com/Sting421/hkotisk-client/internal/gateway"
	"github.com/Sting421/hkotisk-client/internal/notify"
	"github.com/Sting421/hkotisk-client/internal/orders"
	"github.com/Sting421/hkotisk-client/internal/push"
	"github.com/Sting421/hkotisk-client/internal/session"
	"github.com/Sting421/hkotisk-client/pkg/connmon"
	"github.com/Sting421/hkotisk-client/pkg/httpclient"
)

// Run creates all dependencies and drives the sync loop until the context is
// cancelled. It is the single wiring point for the client.
func Run(ctx context.Context, lg *zap.Logger, m *app.Metrics, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("base_url", cfg.BaseURL),
		zap.String("catalog_mode", cfg.CatalogMode))

	telemetry := []otelhttp.Option{
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	}

	notifier := notify.NewZapNotifier(lg.Named("notify"))

	// Headless stand-in for the SPA's login redirect: log the intent. A
	// configured login flow below re-establishes the session on the next run.
	nav := session.NavigatorFunc(func() {
		lg.Warn("Navigation to login requested")
	})

	holder, err := session.NewHolder(cfg.StateDir, nav, lg.Named("session"))
	if err != nil {
		return errors.Wrap(err, "init session holder")
	}

	gw, err := gateway.New(cfg.BaseURL, holder, lg.Named("gateway"), telemetry...)
	if err != nil {
		return errors.Wrap(err, "init gateway")
	}

	// Sign in when credentials are configured and no persisted session exists.
	if _, ok := holder.Token(); !ok && cfg.Login.Email != "" {
		token, role, err := gw.Login(ctx, cfg.Login.Email, cfg.Login.Password)
		if err != nil {
			return errors.Wrap(err, "sign in")
		}
		if err := holder.SetCredentials(token, role); err != nil {
			return errors.Wrap(err, "persist session")
		}
		lg.Info("Signed in", zap.String("role", holder.Role()))
	}

	// Catalog store over the configured backend strategy.
	var backend catalog.Backend
	switch cfg.CatalogMode {
	case ModeLocal:
		backend = catalog.NewLocalBackend(cfg.StateDir, lg.Named("catalog"))
	case ModeRemote:
		backend = catalog.NewRemoteBackend(gw, holder, nav)
	default:
		return errors.Errorf("unknown catalog mode %q", cfg.CatalogMode)
	}
	catalogStore := catalog.NewStore(backend, holder, notifier, cfg.LowStockThreshold, lg.Named("catalog"))
	orderStore := orders.NewStore(gw, holder, notifier, lg.Named("orders"))
	listener := push.NewListener(cfg.PushURL, holder, holder, orderStore, lg.Named("push"))

	// Connectivity monitor: REST reachability plus push channel state.
	probeClient := httpclient.New(5*time.Second, telemetry...)
	monitor := connmon.New()
	monitor.AddProbe("api", 5*time.Second, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL, nil)
		if err != nil {
			return err
		}
		resp, err := probeClient.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		return nil
	})
	monitor.AddProbe("push", time.Second, func(context.Context) error {
		if state := listener.State(); state != push.StateOpen {
			return errors.Errorf("push channel %s", state)
		}
		return nil
	})
	monitor.Start(ctx, cfg.ProbeInterval)
	defer monitor.Stop()

	// Initial snapshots before the background loops take over.
	if err := catalogStore.Activate(ctx); err != nil && !errors.Is(err, catalog.ErrLoginRequired) {
		lg.Warn("Initial catalog load failed", zap.Error(err))
	}
	if err := orderStore.Refresh(ctx); err != nil {
		lg.Warn("Initial order load failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := orderStore.Refresh(gctx); err != nil {
					lg.Warn("Order refresh failed", zap.Error(err))
				}
				if !monitor.Online() {
					lg.Debug("Degraded connectivity", zap.Any("probes", monitor.Snapshot()))
				}
			}
		}
	})

	err = g.Wait()

	// Dispose the stores only after every writer has stopped; late
	// completions are discarded, never applied.
	catalogStore.Close()
	orderStore.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
