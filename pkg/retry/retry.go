// Package retry повторяет операции с экспоненциальной задержкой.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goaccounts/pkg/logger"
)

const (
	logAttemptFailed = "attempt failed, retrying"
	logRecovered     = "operation succeeded after retry"
	logGaveUp        = "giving up after max attempts"
)

// ErrCanceled возвращается, если ctx отменен во время ожидания между попытками.
var ErrCanceled = errors.New("retry canceled")

// Policy описывает число попыток и рост задержки.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Factor         float64
}

// DefaultPolicy - 5 попыток, задержка от 500ms до 5s.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Factor:         2,
	}
}

// Do вызывает op до успеха или исчерпания попыток. Ошибки отмены ctx не повторяются.
func Do(ctx context.Context, name string, p Policy, op func(context.Context) error) error {
	log := logger.Log(ctx).With(zap.String("operation", name))

	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Factor < 1 {
		p.Factor = 1
	}

	backoff := p.InitialBackoff
	var err error

	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info(ctx, logRecovered, zap.Int("attempts", attempt))
			}
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if attempt >= p.Attempts {
			log.Warn(ctx, logGaveUp, zap.Int("attempts", attempt), zap.Error(err))
			return err
		}

		log.Info(ctx, logAttemptFailed,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}

		backoff = time.Duration(float64(backoff) * p.Factor)
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
}
