package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config reintentos con backoff exponencial y jitter.
// MaxRetries es la cantidad de reintentos adicionales al primer intento.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Do ejecuta fn hasta que tenga éxito, devuelva un error no reintentable o se agoten
// los reintentos. Devuelve la cantidad de intentos realizados y el último error.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, fn func(attempt int) error) (int, error) {
	b := backoff.NewExponentialBackOff()
	if cfg.BaseDelay > 0 {
		b.InitialInterval = cfg.BaseDelay
	}
	b.MaxInterval = time.Second
	if cfg.MaxDelay > 0 {
		b.MaxInterval = cfg.MaxDelay
	}
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempts := 0
	op := func() error {
		attempts++
		err := fn(attempts)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx))
	return attempts, err
}
