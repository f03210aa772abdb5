// Package notification provides the outbound message sinks. The only
// implementation today is a simulated email sender that writes the message
// to the log; swapping in a real SMTP sender means implementing
// ports.Notifier and changing one line in cmd/server.
package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/propstay/property-api/internal/core/ports"
)

// LogEmailSender "delivers" emails by logging them. Operators watch the
// process log for the reset link during development.
type LogEmailSender struct {
	log zerolog.Logger
}

func NewLogEmailSender(log zerolog.Logger) *LogEmailSender {
	return &LogEmailSender{log: log}
}

func (s *LogEmailSender) Notify(_ context.Context, n ports.Notification) error {
	s.log.Info().
		Str("to", n.To).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("email simulation")
	return nil
}
