// AngelaMos | 2026
// log.go

package notify

import (
	"context"
	"log/slog"
)

// LogSender records welcome messages in the log instead of delivering them.
// Used when mail is disabled.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendWelcome(
	ctx context.Context,
	to string,
	msg Welcome,
) error {
	s.logger.InfoContext(ctx, "welcome email suppressed",
		"to", to,
		"name", msg.Name,
		"role", msg.Role,
		"subject", welcomeSubject,
	)
	return nil
}
