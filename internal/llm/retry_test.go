package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"
)

type scriptedGenerator struct {
	calls   int
	results []scriptedResult
}

type scriptedResult struct {
	out string
	err error
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	res := s.results[s.calls]
	s.calls++
	return res.out, res.err
}

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := wait
	wait = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { wait = original })
	return &delays
}

func TestWithRetryZeroReturnsBase(t *testing.T) {
	base := PlaceholderClient{}
	if got := WithRetry(base, 0); got != Generator(base) {
		t.Fatalf("expected base generator to be returned unchanged")
	}
}

func TestRetryRecoversFromServerError(t *testing.T) {
	delays := stubWait(t)
	gen := &scriptedGenerator{results: []scriptedResult{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{out: "ok"},
	}}

	out, err := WithRetry(gen, 3).Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out != "ok" || gen.calls != 3 {
		t.Fatalf("unexpected out=%q calls=%d", out, gen.calls)
	}
	if len(*delays) != 2 || (*delays)[1] != 2*(*delays)[0] {
		t.Fatalf("expected doubling delays, got %v", *delays)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	stubWait(t)
	gen := &scriptedGenerator{results: []scriptedResult{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}
	if _, err := WithRetry(gen, 3).Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if gen.calls != 1 {
		t.Fatalf("expected single call, got %d", gen.calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	stubWait(t)
	transient := errors.New("http status 503")
	gen := &scriptedGenerator{results: []scriptedResult{{err: transient}, {err: transient}, {err: transient}}}
	if _, err := WithRetry(gen, 2).Generate(context.Background(), "prompt"); !errors.Is(err, transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if gen.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", gen.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "server", err: genai.APIError{Code: 500}, want: true},
		{name: "quota", err: genai.APIError{Code: 429}, want: true},
		{name: "bad request", err: genai.APIError{Code: 400}, want: false},
		{name: "reset", err: errors.New("read: connection reset by peer"), want: true},
		{name: "placeholder", err: ErrNotImplemented, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Fatalf("ShouldRetry(%v) = %v want %v", tt.err, got, tt.want)
			}
		})
	}
}
