package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// runCleanup periodically removes expired sessions until stopCh is closed
func runCleanup(store core.SessionStore, frequency time.Duration, stopCh <-chan struct{}, logger *zap.Logger) {
	if frequency <= 0 {
		return
	}

	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := store.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up sessions", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
