package geocoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	maxErrorBody = 1024
	maxBackoff   = 5 * time.Second
)

// statusError is a non-2xx answer from the geocoding service.
type statusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (e *statusError) transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// get issues a GET for endpoint, retrying transient failures with doubling
// backoff. The caller owns the returned body.
func (c *YandexClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	wait := c.backoff

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.getOnce(ctx, endpoint)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == c.maxAttempts || !shouldRetry(err) {
			break
		}

		delay := wait
		var se *statusError
		if errors.As(err, &se) && se.RetryAfter > delay {
			delay = se.RetryAfter
		}
		delay = min(delay, maxBackoff)

		zap.L().Debug("geocoder: retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
		wait *= 2
	}

	return nil, lastErr
}

func (c *YandexClient) getOnce(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close() //nolint:errcheck
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &statusError{
		Code:       resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
	}
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryAfter understands the delay-seconds form only.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
