package bootstrap

import (
	"context"
	"time"

	redisclient "stockadvisor/internal/adapters/redis"
	"stockadvisor/internal/agents"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 10 * time.Second,
	}
}

// Shutdown releases components in dependency order: the advisor (and with it
// the tool server subprocess), then Redis, then the error tracker. Nil
// components are skipped.
func (l *Lifecycle) Shutdown(
	advisor *agents.Orchestrator,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	if advisor != nil {
		if err := advisor.Close(); err != nil {
			log.Warnf("Advisor shutdown failed: %v", err)
		} else {
			log.Debug("✓ Tool bridge closed")
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warnf("Redis close failed: %v", err)
		} else {
			log.Debug("✓ Redis closed")
		}
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Error tracker flush failed: %v", err)
		}
	}

	_ = log.Sync()
}
