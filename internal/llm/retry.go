package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"career-booster/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// wait is swapped in tests.
var wait = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type retrying struct {
	base       Generator
	maxRetries int
}

// WithRetry wraps base so transient failures are retried up to maxRetries times
// with a doubling delay. maxRetries <= 0 returns base unchanged.
func WithRetry(base Generator, maxRetries int) Generator {
	if base == nil || maxRetries <= 0 {
		return base
	}
	return retrying{base: base, maxRetries: maxRetries}
}

func (r retrying) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := r.base.Generate(ctx, prompt)
	delay := retryBaseDelay
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err == nil || !ShouldRetry(err) {
			return out, err
		}
		telemetry.Warn("llm.retry", map[string]any{
			"attempt": attempt,
			"error":   telemetry.TruncateForLog(err.Error(), 200),
		})
		if werr := wait(ctx, delay); werr != nil {
			return "", werr
		}
		delay *= 2
		out, err = r.base.Generate(ctx, prompt)
	}
	return out, err
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "client.timeout") || strings.Contains(msg, "tls handshake timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof")
}
