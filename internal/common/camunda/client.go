// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/logger"
)

// RetryConfig defines how long Connect waits for the gateway.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Connect creates a Zeebe client and waits until the gateway answers a topology
// request. Only transient failures are retried.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: cfg.Plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pinger := TopologyPinger{Client: client, Timeout: timeout}

	err = withRetry(ctx, retry, func(ctx context.Context) error {
		return pinger.Ping(ctx)
	}, func(attempt int, delay time.Duration, err error) {
		log.Warn("zeebe gateway not ready, retrying", map[string]interface{}{
			"gateway":     cfg.BrokerAddress,
			"attempt":     attempt,
			"nextRetryIn": delay.String(),
			"error":       err.Error(),
		})
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe gateway at %s: %w", cfg.BrokerAddress, err)
	}

	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.BrokerAddress})
	return client, nil
}

// TopologyPinger reports gateway health for readiness probes.
type TopologyPinger struct {
	Client  zbc.Client
	Timeout time.Duration
}

func (p TopologyPinger) Ping(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if _, err := p.Client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// withRetry runs op until it succeeds, fails permanently or runs out of attempts.
func withRetry(ctx context.Context, cfg RetryConfig, op func(context.Context) error, onRetry func(int, time.Duration, error)) error {
	attempts := max(cfg.MaxRetries, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryableZeebeError(lastErr) || attempt == attempts-1 {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		if onRetry != nil {
			onRetry(attempt+1, delay, lastErr)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempts: %w", attempt+1, ctx.Err())
		}
	}
	return lastErr
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
