package services

import (
	"time"

	"github.com/devfolio/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// tokenRetention keeps revoked and expired refresh tokens around for a
// while so session history can be inspected before rows disappear.
const tokenRetention = 7 * 24 * time.Hour

// TokenCleanup purges stale refresh tokens on a schedule.
type TokenCleanup struct {
	auth *AuthService
	cron *cron.Cron
}

func NewTokenCleanup(auth *AuthService) *TokenCleanup {
	return &TokenCleanup{auth: auth}
}

// Start runs the purge once immediately and then every day at 03:00.
func (t *TokenCleanup) Start() error {
	t.cron = cron.New()
	if _, err := t.cron.AddFunc("0 3 * * *", t.run); err != nil {
		return err
	}
	t.cron.Start()
	go t.run()
	logger.Info().Msg("refresh token cleanup scheduler started")
	return nil
}

func (t *TokenCleanup) Stop() {
	if t.cron != nil {
		t.cron.Stop()
	}
}

func (t *TokenCleanup) run() {
	cutoff := time.Now().Add(-tokenRetention)
	n, err := t.auth.PurgeExpiredTokens(cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("refresh token purge failed")
		return
	}
	if n > 0 {
		logger.Info().Int64("deleted", n).Msg("purged stale refresh tokens")
	}
}
