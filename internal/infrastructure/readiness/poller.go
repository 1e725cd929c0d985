package readiness

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
)

// Policy bounds the readiness wait.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	// Backoff doubles the delay after every failed attempt, up to MaxInterval.
	Backoff     bool
	MaxInterval time.Duration
}

// DefaultPolicy polls once per second, 30 times.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 30, Interval: time.Second, MaxInterval: time.Second}
}

func (p Policy) delays() *backoff.Backoff {
	factor := 1.0
	if p.Backoff {
		factor = 2
	}
	maxInterval := p.MaxInterval
	if maxInterval < p.Interval {
		maxInterval = p.Interval
	}
	return &backoff.Backoff{Min: p.Interval, Max: maxInterval, Factor: factor}
}

// Clock sleeps between attempts.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealClock sleeps on wall-clock time.
func RealClock() Clock { return realClock{} }

// Prober performs one readiness attempt and returns the HTTP status.
type Prober interface {
	Probe(ctx context.Context, url string) (int, error)
}

// HTTPProber issues a GET request. Any HTTP response counts as reachable.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober with a per-attempt timeout
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Poller waits until a URL answers or the policy's attempts run out.
type Poller struct {
	policy Policy
	prober Prober
	clock  Clock
	logger logger.Logger
}

// NewPoller creates a poller
func NewPoller(policy Policy, prober Prober, clock Clock, logger logger.Logger) port.ReadinessWaiter {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &Poller{
		policy: policy,
		prober: prober,
		clock:  clock,
		logger: logger,
	}
}

// Wait never fails: the caller decides what an unready backend means.
func (p *Poller) Wait(ctx context.Context, url string) entity.Readiness {
	delays := p.policy.delays()
	var lastErr error

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		status, err := p.prober.Probe(ctx, url)
		if err == nil {
			p.logger.LogInfo(ctx, "Backend is ready",
				"url", url,
				"attempt", attempt,
				"status", status)
			return entity.Readiness{Ready: true, Attempts: attempt}
		}
		lastErr = err
		p.logger.LogWarning(ctx, "Backend not reachable yet",
			"url", url,
			"attempt", attempt,
			"max_attempts", p.policy.MaxAttempts,
			"error", err.Error())

		if attempt == p.policy.MaxAttempts {
			break
		}
		if err := p.clock.Sleep(ctx, delays.Duration()); err != nil {
			return entity.Readiness{Attempts: attempt, LastErr: err}
		}
	}

	p.logger.LogWarning(ctx, "Backend readiness budget exhausted, continuing anyway",
		"url", url,
		"attempts", p.policy.MaxAttempts)
	return entity.Readiness{Attempts: p.policy.MaxAttempts, LastErr: lastErr}
}
