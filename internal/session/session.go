// Package session owns the authenticated session: the bearer token and the
// role tag attached to it. Stores and the gateway only read the session;
// writes happen in the login flow and on a server-signalled rejection.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Navigator receives the navigate-to-login intent. The view layer decides
// what a "redirect" means; headless deployments may re-run the login flow or
// shut down.
type Navigator interface {
	GoToLogin()
}

// NavigatorFunc adapts a plain function to the Navigator interface.
type NavigatorFunc func()

func (f NavigatorFunc) GoToLogin() { f() }

// credentials is the durable on-disk shape of a session.
type credentials struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}

// Holder is the process-wide owner of the current session. There is no
// proactive refresh: expiry is discovered reactively when a call comes back
// unauthorized, at which point the token is cleared and the navigator is
// asked for the login screen exactly once.
type Holder struct {
	nav  Navigator
	lg   *zap.Logger
	path string // empty disables persistence

	mu    sync.RWMutex
	token string
	role  string
}

// NewHolder creates a Holder persisting to the given state directory. An
// existing session file is loaded so a restart keeps the user signed in.
// An empty stateDir keeps the session in memory only.
func NewHolder(stateDir string, nav Navigator, lg *zap.Logger) (*Holder, error) {
	h := &Holder{nav: nav, lg: lg}
	if stateDir == "" {
		return h, nil
	}
	h.path = filepath.Join(stateDir, "session.json")

	raw, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session file")
	}
	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		// A corrupt session file is not fatal: start signed out.
		lg.Warn("Discarding unreadable session file", zap.String("path", h.path), zap.Error(err))
		return h, nil
	}
	h.token = creds.Token
	h.role = creds.Role
	return h, nil
}

// Token returns the current bearer token. Callers must re-read it for every
// outgoing request rather than caching it across an await point: it may be
// cleared mid-flight.
func (h *Holder) Token() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Role returns the role tag of the signed-in user, empty when signed out.
func (h *Holder) Role() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.role
}

// SetCredentials installs a new token and role after a successful login and
// persists them.
func (h *Holder) SetCredentials(token, role string) error {
	h.mu.Lock()
	h.token = token
	h.role = role
	h.mu.Unlock()
	return h.persist(credentials{Token: token, Role: role})
}

// Logout clears the session on explicit user request.
func (h *Holder) Logout() {
	h.clear()
}

// OnUnauthorized is called by any collaborator that received an
// authorization-denied response. It clears the token and the cached role and
// emits the navigate-to-login intent. The intent fires exactly once per
// credential generation: concurrent rejections of the same stale token do not
// redirect twice.
func (h *Holder) OnUnauthorized() {
	if !h.clear() {
		return
	}
	h.lg.Warn("Session rejected by server, redirecting to login")
	if h.nav != nil {
		h.nav.GoToLogin()
	}
}

// clear wipes token and role and removes the session file. It reports whether
// a session was actually present.
func (h *Holder) clear() bool {
	h.mu.Lock()
	had := h.token != ""
	h.token = ""
	h.role = ""
	h.mu.Unlock()

	if had && h.path != "" {
		if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.lg.Warn("Removing session file failed", zap.Error(err))
		}
	}
	return had
}

func (h *Holder) persist(creds credentials) error {
	if h.path == "" {
		return nil
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write session file")
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return errors.Wrap(err, "replace session file")
	}
	return nil
}
