package providers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// BreakerConfig controls when an upstream's circuit opens.
type BreakerConfig struct {
	MaxFailures uint32        // consecutive failures before opening (0 = never open)
	OpenTimeout time.Duration // how long the circuit stays open before a probe
}

// UpstreamRecorder observes each outbound request. status is the HTTP status
// code, "error" for transport failures, or "circuit_open".
type UpstreamRecorder interface {
	ObserveUpstream(upstream, status string)
}

// Option customises a provider.
type Option func(*options)

type options struct {
	breaker  BreakerConfig
	recorder UpstreamRecorder
}

// WithBreaker sets the circuit breaker thresholds.
func WithBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = cfg }
}

// WithRecorder reports every outbound request to r.
func WithRecorder(r UpstreamRecorder) Option {
	return func(o *options) { o.recorder = r }
}

func buildOptions(opts []Option) options {
	o := options{
		breaker: BreakerConfig{OpenTimeout: time.Minute},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var (
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errUnexpectedRes = errors.New("unexpected result type from circuit breaker")
)

// upstream bundles what every provider needs to issue one GET.
type upstream struct {
	name     string
	baseURL  string
	client   *resty.Client
	circuit  *gobreaker.CircuitBreaker
	recorder UpstreamRecorder
}

func newUpstream(name, baseURL string, client *resty.Client, o options) upstream {
	maxFailures := o.breaker.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     o.breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
		},
	})
	return upstream{
		name:     name,
		baseURL:  baseURL,
		client:   client,
		circuit:  cb,
		recorder: o.recorder,
	}
}

// get issues a single GET with params and returns the body of a 2xx response.
// There is no retry: one failed attempt is final.
func (u upstream) get(ctx context.Context, params map[string]string) ([]byte, error) {
	if u.client == nil {
		return nil, errNoHTTPClient
	}

	result, err := u.circuit.Execute(func() (interface{}, error) {
		resp, execErr := u.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(u.baseURL)
		if execErr != nil {
			u.observe("error")
			return nil, execErr
		}

		u.observe(strconv.Itoa(resp.StatusCode()))
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			u.observe("circuit_open")
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, errUnexpectedRes
	}
	return body, nil
}

func (u upstream) observe(status string) {
	if u.recorder != nil {
		u.recorder.ObserveUpstream(u.name, status)
	}
}

// NewRESTClient returns the resty client shared by the providers. A zero
// timeout leaves the transport default in place.
func NewRESTClient(timeout time.Duration) *resty.Client {
	c := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "weather-lookup/1.0")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
