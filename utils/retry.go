package utils

import (
	"context"
	"time"

	"MetroScraper/internal/logger"

	"github.com/cenkalti/backoff/v4"
)

// Retry calls fn up to tries times, waiting delay between attempts, and logs every failed
// attempt but the last. Errors wrapped with Permanent stop the loop immediately and are
// returned unwrapped.
func Retry(ctx context.Context, tries int, delay time.Duration, log logger.Logger, name string, fn func() error) error {
	if tries < 1 {
		tries = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(tries-1)),
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		return fn()
	}
	notify := func(err error, next time.Duration) {
		log.Errorf("Attempt %d/%d of %s failed, retrying in %s: %v", attempt, tries, name, next, err)
	}

	return backoff.RetryNotify(operation, policy, notify)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
