package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Catalog backend modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds the complete client configuration, loadable from environment
// variables (TUCKSHOP_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL           string        `default:"http://localhost:8080" usage:"hkotisk API base URL" flag:"base-url"`
	PushURL           string        `usage:"order event channel URL (derived from base-url when empty)" flag:"push-url"`
	StateDir          string        `usage:"directory for session and local catalog state (defaults under the user config dir)" flag:"state-dir"`
	CatalogMode       string        `default:"remote" usage:"catalog backend: local or remote" flag:"catalog-mode"`
	PollInterval      time.Duration `default:"30s" usage:"order list refresh cadence" flag:"poll-interval"`
	ProbeInterval     time.Duration `default:"15s" usage:"connectivity probe cadence" flag:"probe-interval"`
	LowStockThreshold int           `default:"10" usage:"low-stock threshold for products the server reports without one" flag:"low-stock-threshold"`
	Login             LoginConfig
}

// LoginConfig carries staff credentials for headless sign-in. Leave empty to
// reuse a persisted session.
type LoginConfig struct {
	Email    string `usage:"staff email (TUCKSHOP_LOGIN_EMAIL)"`
	Password string `usage:"staff password (TUCKSHOP_LOGIN_PASSWORD)"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies derived defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "TUCKSHOP",
		Files:     []string{"config.yaml", "/etc/tuckshop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyDerivedDefaults(); err != nil {
		return nil, err
	}

	if cfg.CatalogMode != ModeLocal && cfg.CatalogMode != ModeRemote {
		return nil, errors.Errorf("catalog mode must be %q or %q, got %q", ModeLocal, ModeRemote, cfg.CatalogMode)
	}
	return &cfg, nil
}

// applyDerivedDefaults fills in the push URL and state directory when not
// configured explicitly.
func (c *Config) applyDerivedDefaults() error {
	if c.PushURL == "" {
		ws := c.BaseURL
		switch {
		case strings.HasPrefix(ws, "https://"):
			ws = "wss://" + strings.TrimPrefix(ws, "https://")
		case strings.HasPrefix(ws, "http://"):
			ws = "ws://" + strings.TrimPrefix(ws, "http://")
		}
		c.PushURL = strings.TrimRight(ws, "/") + "/ws/orders"
	}
	if c.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "resolve user config dir")
		}
		c.StateDir = filepath.Join(base, "tuckshop")
	}
	return nil
}
