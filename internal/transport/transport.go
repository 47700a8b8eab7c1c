// Package transport delivers rendered messages to a mail relay.
package transport

import (
	"context"
	"fmt"

	"github.com/mailblast/mailblast/internal/config"
	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
)

// Transport is the interface that all mail providers must implement.
// This abstraction allows swapping providers (SMTP relay, Gmail API)
// without changing the dispatch loop.
type Transport interface {
	// Connect establishes and authenticates the relay connection.
	Connect(ctx context.Context) error
	// Send transmits one message and classifies the result. The
	// returned error carries provider detail for logging; the outcome
	// is what the dispatch loop tallies.
	Send(ctx context.Context, msg *model.RenderedMessage) (model.Outcome, error)
	// Close releases the relay connection.
	Close() error
}

// New selects a Transport from the configured provider.
func New(cfg *config.Config, log *logger.Logger) (Transport, error) {
	switch cfg.Sender.Provider {
	case "smtp":
		return NewSMTP(cfg.SMTP, cfg.Sender.Address, log), nil
	case "gmail":
		return NewGmail(cfg.Gmail, cfg.Sender.Address, log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Sender.Provider)
	}
}
