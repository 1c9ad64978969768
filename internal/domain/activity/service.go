package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/timeclock/internal/clock"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a new activity service. A nil clk reads the wall clock.
func NewService(repo Repository, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, clock: clk, logger: logger}
}

// LogActivity logs an activity entry, stamped with the service clock when
// CreatedAt is unset.
func (s *Service) LogActivity(ctx context.Context, userID string, entry *ActivityEntry) error {
	if entry == nil || strings.TrimSpace(userID) == "" || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	entry.UserID = userID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	if err := s.repo.Log(ctx, userID, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record logs an entry and swallows failures; the audit trail never blocks
// the operation that produced it.
func (s *Service) Record(ctx context.Context, userID string, entry *ActivityEntry) {
	if s == nil {
		return
	}
	if err := s.LogActivity(ctx, userID, entry); err != nil {
		s.logger.Warn("activity log write failed", "user_id", userID, "type", entry.ActivityType, "error", err)
	}
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, userID string, opts ListActivityOptions) ([]ActivityEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, userID, opts)
}
