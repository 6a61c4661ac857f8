package refreshtokens

import (
	"context"
	"time"

	"codeberg.org/quillpost/server/internal/logger"
)

type purger interface {
	DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// periodically removes slots whose refresh token can no longer be valid
type CleanupService struct {
	repo          purger
	checkInterval time.Duration
	maxAge        time.Duration
	now           func() time.Time
}

// maxAge should be the refresh token lifetime
func NewCleanupService(repo purger, checkInterval, maxAge time.Duration) *CleanupService {
	return &CleanupService{
		repo:          repo,
		checkInterval: checkInterval,
		maxAge:        maxAge,
		now:           time.Now,
	}
}

// runs until ctx is cancelled
func (s *CleanupService) Start(ctx context.Context) {
	logger.Info("starting refresh token cleanup service",
		"check_interval", s.checkInterval.String(),
		"max_age", s.maxAge.String(),
	)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("refresh token cleanup service stopped")
			return
		case <-ticker.C:
			s.purgeExpired(ctx)
		}
	}
}

func (s *CleanupService) purgeExpired(ctx context.Context) int64 {
	removed, err := s.repo.DeleteUpdatedBefore(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		logger.ErrorErr(err, "failed to purge expired refresh tokens")
		return 0
	}

	if removed > 0 {
		logger.Info("purged expired refresh tokens", "count", removed)
	}

	return removed
}
