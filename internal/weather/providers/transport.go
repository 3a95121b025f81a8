package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/pk-weather-dashboard/internal/weather"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError is a non-2xx upstream response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.code)
}

// requestFault reports whether err is a 4xx answer to a bad request. Those say
// nothing about upstream health, so they do not count toward tripping.
func requestFault(err error) bool {
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	return se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
}

// breakerSet hands out one circuit breaker per location key. Failures at one
// location never short-circuit a request for another.
type breakerSet struct {
	settings gobreaker.Settings

	mu    sync.Mutex
	byKey map[string]*gobreaker.CircuitBreaker
}

func newBreakerSet(name string) *breakerSet {
	return &breakerSet{
		settings: gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			IsSuccessful: func(err error) bool {
				return err == nil || requestFault(err)
			},
		},
		byKey: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (b *breakerSet) get(key string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.byKey[key]; ok {
		return cb
	}
	st := b.settings
	st.Name = b.settings.Name + "/" + key
	cb := gobreaker.NewCircuitBreaker(st)
	b.byKey[key] = cb
	return cb
}

// doRequest issues a single attempt of req through cb. Every failure,
// including an open breaker, is wrapped in weather.ErrTransport. The caller
// owns the returned body.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w: %v", weather.ErrTransport, errCircuitOpen, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", weather.ErrTransport, err)
	}
	return result.(*http.Response), nil
}
