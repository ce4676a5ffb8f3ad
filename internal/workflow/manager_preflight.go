package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"audiogram/internal/logging"
	"audiogram/internal/preflight"
)

// runPreflightChecks validates directories and binaries before any audio is
// downloaded. Returns nil when all checks pass, or an error describing all
// failures.
func (m *Manager) runPreflightChecks(ctx context.Context, logger *slog.Logger) error {
	if m.skipPreflight {
		return nil
	}
	results := preflight.RunAll(ctx, m.cfg, preflight.Options{SkipFeed: true, SkipEncoders: true})

	var failures []string
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "run 'audiogram check' and fix the reported issue"),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}

	if len(failures) > 0 {
		return configurationError("preflight", fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; ")))
	}
	return nil
}
