package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Errors reported by the Redis backend. Match them with errors.Is.
var (
	// ErrNotFound marks a key Redis does not hold. Get turns it into a miss.
	ErrNotFound = errors.New("cache: key not found")

	// ErrNetwork marks a Redis server that could not be reached or that
	// dropped the connection mid-reply.
	ErrNetwork = errors.New("cache: redis unreachable")

	// ErrUnavailable marks a reachable Redis server that refused the command
	// for a passing reason (loading its dataset, failover, client limit).
	ErrUnavailable = errors.New("cache: redis temporarily unavailable")

	// ErrClientClosed is returned after Close.
	ErrClientClosed = errors.New("cache: redis client closed")
)

// retryError marks an error the backoff loop may retry.
type retryError struct{ err error }

func (e *retryError) Error() string { return e.err.Error() }
func (e *retryError) Unwrap() error { return e.err }

func retry(sentinel, cause error) error {
	return &retryError{err: fmt.Errorf("%w: %v", sentinel, cause)}
}

// IsRetryable reports whether err came from a Redis failure that may
// succeed on a later attempt.
func IsRetryable(err error) bool {
	var re *retryError
	return errors.As(err, &re)
}

// classify maps a go-redis error onto the package errors.
//
//   - redis.Nil becomes ErrNotFound.
//   - Dial, timeout and EOF failures become a retryable ErrNetwork.
//   - LOADING, READONLY, MASTERDOWN, CLUSTERDOWN, TRYAGAIN, BUSY and
//     max-clients replies become a retryable ErrUnavailable.
//   - Context errors and any other server reply are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, redis.ErrClosed):
		return fmt.Errorf("%w: %v", ErrClientClosed, err)
	}

	var re redis.Error
	if errors.As(err, &re) {
		if transientReply(err) {
			return retry(ErrUnavailable, err)
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return retry(ErrNetwork, err)
	}
	return err
}

func transientReply(err error) bool {
	return redis.IsLoadingError(err) ||
		redis.IsReadOnlyError(err) ||
		redis.IsMasterDownError(err) ||
		redis.IsClusterDownError(err) ||
		redis.IsTryAgainError(err) ||
		redis.IsMaxClientsError(err) ||
		redis.HasErrorPrefix(err, "BUSY ")
}

// Backoff retries an operation while it fails with a retryable error.
// The wait before each retry doubles, starting at Delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used by RedisCache unless replaced.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 200 * time.Millisecond}

// Do runs fn until it succeeds, returns a non-retryable error, runs out
// of attempts or ctx is done.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}
