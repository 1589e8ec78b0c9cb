package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes events to the logger. It is the default sink when no
// broker is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	n.log.InfoContext(ctx, "notification",
		"id", ev.ID.String(),
		"kind", string(ev.Kind),
		"recipient", ev.Recipient,
		"peer", ev.Peer,
	)
	return nil
}
