package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Sweeper is implemented by stores that can drop expired records in bulk.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RunSweeper deletes expired sessions every interval until ctx ends.
func RunSweeper(ctx context.Context, store Sweeper, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				if logger != nil && ctx.Err() == nil {
					logger.Warn("session sweep failed", "err", err)
				}
				continue
			}
			if n > 0 && logger != nil {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
