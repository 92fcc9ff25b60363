package services

import (
	"time"

	"github.com/rentfolio/rentfolio/internal/config"
	"github.com/rentfolio/rentfolio/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RetentionService deletes aged rows from the validation attempt,
// AI usage, and system log tables on a nightly schedule. Retention
// windows come from config; a window of zero disables the sweep for
// that table.
type RetentionService struct {
	cfg       *config.RetentionConfig
	attempts  *ValidationAttemptService
	usage     *AIUsageService
	logs      *SystemLogService
	scheduler *cron.Cron
}

func NewRetentionService(cfg *config.RetentionConfig, attempts *ValidationAttemptService, usage *AIUsageService, logs *SystemLogService) *RetentionService {
	return &RetentionService{
		cfg:      cfg,
		attempts: attempts,
		usage:    usage,
		logs:     logs,
	}
}

// StartScheduler runs the sweep every night at 03:30.
func (s *RetentionService) StartScheduler() {
	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc("30 3 * * *", func() {
		s.Sweep()
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule retention sweep")
		return
	}

	s.scheduler.Start()
	logger.Info().Msg("retention scheduler started")
}

func (s *RetentionService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Sweep deletes everything older than each configured window.
func (s *RetentionService) Sweep() {
	now := time.Now()
	log := logger.With("retention")

	if s.cfg.ValidationDays > 0 {
		cutoff := now.AddDate(0, 0, -s.cfg.ValidationDays)
		n, err := s.attempts.CleanupBefore(cutoff)
		if err != nil {
			log.Error().Err(err).Msg("validation attempt cleanup failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("validation attempts swept")
		}
	}

	if s.cfg.AIUsageDays > 0 {
		cutoff := now.AddDate(0, 0, -s.cfg.AIUsageDays)
		n, err := s.usage.CleanupBefore(cutoff)
		if err != nil {
			log.Error().Err(err).Msg("ai usage cleanup failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("ai usage logs swept")
		}
	}

	if s.cfg.SystemLogDays > 0 {
		cutoff := now.AddDate(0, 0, -s.cfg.SystemLogDays)
		n, err := s.logs.CleanupBefore(cutoff)
		if err != nil {
			log.Error().Err(err).Msg("system log cleanup failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("system logs swept")
		}
	}
}
