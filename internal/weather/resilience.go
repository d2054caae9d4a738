package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff between retry attempts.
// The fetch contract allows only the suffix-stripped second attempt, so the
// client is configured with MaxRetries 0; the knobs stay for operators who
// accept the extra provider load.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("provider rate limited")
	errServerError = errors.New("provider server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// getWithResilience issues a GET through the circuit breaker, retrying with
// exponential backoff on transient failures. The caller owns the response body.
func getWithResilience(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, backoff BackoffConfig, url string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := breakerGet(ctx, client, cb, url)
		if err == nil {
			return resp, nil
		}

		// An open breaker will not recover within one backoff window.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if attempt >= backoff.MaxRetries {
			return nil, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if backoff.MaxInterval > 0 && delay > backoff.MaxInterval {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func breakerGet(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, url string) (*http.Response, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return nil, errServerError
		}

		// Other non-2xx statuses go back to the caller: the provider has no
		// documented error schema, so the body still has to be inspected for
		// the missing-temperature signal.
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
