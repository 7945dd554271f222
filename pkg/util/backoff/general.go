package backoff

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var InitialInterval = 500 * time.Millisecond

// RetryGeneral runs op until it succeeds, returns a permanent error, ctx is done or
// maxRetries retries are spent.
func RetryGeneral(ctx context.Context, maxRetries uint64, op backoff.Operation) (err error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = InitialInterval

	err = backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(b, maxRetries),
		ctx))
	return err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
