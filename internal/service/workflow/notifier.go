package workflow

import (
	"context"
	"log/slog"

	wfSvc "docflow/internal/domain/services/workflow"
)

// logNotifier is the default Notifier: it logs each logical event and
// nothing else. A real deployment swaps in a dispatcher that feeds the
// email/digest subsystem; the engine only guarantees that emission
// happens after commit and that failures never surface to the caller.
type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a Notifier that records events to the log
func NewLogNotifier(logger *slog.Logger) wfSvc.Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, e wfSvc.Event) {
	n.logger.Info("workflow event",
		"kind", e.Kind,
		"tenant_id", e.TenantID,
		"document_id", e.Document,
		"display_id", e.Display,
		"actor", e.Actor.UserID,
		"recipients", len(e.Recipients),
	)
}
