// Package notify is the seam between the stores and the user-facing surface.
// Stores never leak error internals past it: the view only learns that an
// action failed and which one.
package notify

import "go.uber.org/zap"

// Notifier receives user-visible signals. Implementations render toasts,
// print to a terminal, or just log.
type Notifier interface {
	// Failure reports that the named action failed and a user-triggered retry
	// is the recovery path.
	Failure(action string)
	// Integrity reports a malformed record that was rejected from a snapshot.
	Integrity(detail string)
}

// ZapNotifier logs notifications; the default for headless runs.
type ZapNotifier struct {
	lg *zap.Logger
}

// NewZapNotifier wraps the given logger.
func NewZapNotifier(lg *zap.Logger) *ZapNotifier {
	return &ZapNotifier{lg: lg}
}

func (n *ZapNotifier) Failure(action string) {
	n.lg.Warn("Action failed", zap.String("action", action))
}

func (n *ZapNotifier) Integrity(detail string) {
	n.lg.Error("Rejected malformed record", zap.String("detail", detail))
}
