package utils

import (
	"context"
	"os"
	"strconv"
	"sync"
)

// DefaultSemaphoreLimit is the concurrency used when none is configured.
const DefaultSemaphoreLimit = 20

// GetSemaphoreLimit returns SEMAPHORE_LIMIT from the environment or the default.
func GetSemaphoreLimit() int {
	limit, err := strconv.Atoi(os.Getenv("SEMAPHORE_LIMIT"))
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}

// ExecuteWithResults runs functions with at most maxConcurrency in flight and
// returns their results in call order. A maxConcurrency of zero or less uses
// GetSemaphoreLimit. Functions that have not started when ctx is cancelled
// report ctx.Err(). Panics are recovered and reported as *PanicError.
func ExecuteWithResults[T any](ctx context.Context, maxConcurrency int, functions ...func() (T, error)) ([]T, []error) {
	if len(functions) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = GetSemaphoreLimit()
	}

	semaphore := make(chan struct{}, maxConcurrency)
	results := make([]T, len(functions))
	errs := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() (T, error)) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				errs[index] = err
			})

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}
			if err := ctx.Err(); err != nil {
				errs[index] = err
				return
			}

			results[index], errs[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results, errs
}

// Worker processes one item.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// Map applies worker to every item with at most maxConcurrency in flight.
// Results are returned in item order.
func Map[T any, R any](ctx context.Context, maxConcurrency int, items []T, worker Worker[T, R]) ([]R, []error) {
	functions := make([]func() (R, error), len(items))
	for i, item := range items {
		functions[i] = func() (R, error) { return worker(ctx, item) }
	}
	return ExecuteWithResults(ctx, maxConcurrency, functions...)
}
