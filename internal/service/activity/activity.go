// Package activity keeps a log of page notices for the dashboard feed.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/repository/mongodb"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
)

const writeTimeout = 3 * time.Second

// Service records notices. A nil repository turns it into a no-op.
type Service struct {
	repo   mongodb.Repository
	logger *zap.Logger
}

// NewService wires the activity log.
func NewService(repo mongodb.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Enabled reports whether activities are stored.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores n. Storage failures are logged and never reach the page.
func (s *Service) Record(ctx context.Context, n viewstate.Notice) {
	if !s.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	entry := models.Activity{
		ID:      uuid.NewString(),
		Page:    n.Page,
		Level:   string(n.Level),
		Title:   n.Title,
		Message: n.Message,
		At:      n.At.UTC(),
	}
	if err := s.repo.SaveActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.String("page", n.Page), zap.Error(err))
	}
}

// Recent returns up to limit entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int64) ([]models.Activity, error) {
	if !s.Enabled() {
		return nil, nil
	}
	return s.repo.RecentActivities(ctx, limit)
}
