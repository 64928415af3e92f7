package app

import (
	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
)

// Shutdown gracefully releases all application components.
func (a *Application) Shutdown() {
	if a.pool != nil {
		a.pool.Shutdown(a.Config.Server.ShutdownTimeout)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("cache close returned error", zap.Error(err))
		}
	}
}
