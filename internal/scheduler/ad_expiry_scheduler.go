package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
)

// AdExpiryScheduler flips active ads past their expires_at to expired.
// Reads already filter expired listings out of the map, so the sweep
// only has to keep the stored status eventually consistent.
type AdExpiryScheduler struct {
	cron   *cron.Cron
	adRepo repository.AdRepository
}

func NewAdExpiryScheduler(adRepo repository.AdRepository) *AdExpiryScheduler {
	return &AdExpiryScheduler{
		cron:   cron.New(),
		adRepo: adRepo,
	}
}

// Start registers the nightly sweep and runs one immediately so a
// restarted server catches up right away.
func (s *AdExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc("30 3 * * *", s.expireOverdueAds)
	if err != nil {
		logger.Error("Failed to add cron job for ad expiry", err)
		return err
	}

	s.cron.Start()
	logger.Info("Ad expiry scheduler started (daily at 3:30 AM)")

	go s.expireOverdueAds()
	return nil
}

func (s *AdExpiryScheduler) expireOverdueAds() {
	expired, err := s.adRepo.ExpireOverdue(time.Now())
	if err != nil {
		logger.Error("Failed to expire overdue ads", err)
		return
	}
	if expired > 0 {
		logger.Info("Expired overdue ads", map[string]interface{}{
			"count": expired,
		})
	}
}

func (s *AdExpiryScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Ad expiry scheduler stopped")
}
