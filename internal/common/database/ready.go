// internal/common/database/ready.go
package database

import (
	"context"
	"fmt"
	"time"

	"volunteer-engine/internal/common/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady pings until the backend answers, doubling the delay between attempts.
func WaitReady(ctx context.Context, name string, p Pinger, attempts int, delay time.Duration, log logger.Logger) error {
	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.Ping(pingCtx)
		cancel()
		if err == nil {
			log.Info(name+" connected", nil)
			return nil
		}
		if i == attempts-1 {
			break
		}

		log.Warn(name+" not ready, retrying", map[string]interface{}{
			"attempt":     i + 1,
			"maxAttempts": attempts,
			"nextRetryIn": delay.String(),
			"error":       err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		delay *= 2
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", name, attempts, err)
}
