// Package retryutil содержит общую политику повторов для сетевых вызовов.
package retryutil

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultAttempts задаёт суммарное число попыток, включая первую.
const DefaultAttempts = 3

// DefaultStep задаёт шаг линейной задержки: перед N-м повтором ждём step*N.
const DefaultStep = 500 * time.Millisecond

// Do выполняет fn со стандартной политикой: три попытки, линейная задержка.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return DoWithPolicy(ctx, DefaultAttempts, DefaultStep, fn)
}

// DoWithPolicy выполняет fn с ограниченным числом попыток и линейной задержкой.
// Любая ошибка fn считается повторяемой; ошибка последней попытки
// возвращается как есть. Отмена контекста прерывает ожидание между попытками.
func DoWithPolicy(ctx context.Context, attempts int, step time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), linear(step))

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}

// linear возвращает backoff с задержками step, 2*step, 3*step и так далее.
func linear(step time.Duration) retry.Backoff {
	attempt := time.Duration(0)
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return step * attempt, false
	})
}
