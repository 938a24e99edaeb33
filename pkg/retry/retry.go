package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ErrExhausted оборачивает последнюю ошибку, когда попытки закончились
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy ограниченный повтор с линейной рандомизированной задержкой
type Policy struct {
	MaxAttempts int
	// Backoff базовая задержка: перед попыткой n+1 ждём Backoff*n плюс случайную добавку до Backoff/2
	Backoff time.Duration
	// RetryIf решает, повторять ли после ошибки. nil - повторять любую.
	RetryIf func(err error) bool
	// OnRetry вызывается перед ожиданием, attempt - номер неудачной попытки
	OnRetry func(attempt int, err error)
}

// Do вызывает fn до MaxAttempts раз. Между попытками ничего не удерживается:
// каждая попытка сама открывает и закрывает свою транзакцию.
// Ошибки, для которых RetryIf вернул false, возвращаются сразу.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if p.RetryIf != nil && !p.RetryIf(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}

		select {
		case <-time.After(Delay(p.Backoff, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return errors.Join(ErrExhausted, lastErr)
}

// Delay задержка после неудачной попытки attempt
func Delay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base*time.Duration(attempt) + jitter
}
