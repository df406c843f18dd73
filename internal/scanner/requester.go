package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/maxvaer/dirbust/internal/config"
	log "github.com/sirupsen/logrus"
)

// ErrHostUnreachable is returned by Preflight when the target cannot be
// reached at the network level.
var ErrHostUnreachable = errors.New("host unreachable")

// Requester wraps an HTTP client configured once per scan. It is safe for
// concurrent use by many workers.
type Requester struct {
	client    *http.Client
	cfg       *config.ScanConfig
	throttler *Throttler
	dialer    *net.Dialer
}

// NewRequester creates a Requester from the scan configuration. The
// redirect policy is fixed here: either the client follows the whole chain
// or it hands back the first response.
func NewRequester(cfg *config.ScanConfig, throttler *Throttler) *Requester {
	dialer := &net.Dialer{Timeout: cfg.Timeout}

	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify},
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: cfg.Concurrency,
		MaxIdleConns:        cfg.Concurrency,
		TLSHandshakeTimeout: cfg.Timeout,
	}
	if cfg.Proxy != nil {
		transport.Proxy = http.ProxyURL(cfg.Proxy)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Requester{
		client:    client,
		cfg:       cfg,
		throttler: throttler,
		dialer:    dialer,
	}
}

// Execute requests target and returns its Outcome. Timeouts are retried
// when the scan enables retry; every other failure is terminal. Attempts
// never overlap.
func (r *Requester) Execute(ctx context.Context, target string) Outcome {
	maxAttempts := r.cfg.Attempts()

	var out Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if r.throttler != nil {
			if err := r.throttler.Wait(ctx); err != nil {
				out.Failure, out.Err = FailureCanceled, err
				return out
			}
		}

		out = r.do(ctx, target)
		out.Attempts = attempt

		if out.Failure != FailureTimeout {
			break
		}
		if attempt < maxAttempts {
			log.WithFields(log.Fields{"url": target, "attempt": attempt}).Debug("request timed out, retrying")
		}
	}

	if r.throttler != nil {
		if out.OK() {
			r.throttler.RecordStatus(out.StatusCode)
		} else if out.Failure.Transport() {
			r.throttler.RecordError()
		}
	}
	return out
}

// do issues a single fresh request.
func (r *Requester) do(ctx context.Context, target string) Outcome {
	req, err := http.NewRequestWithContext(ctx, r.cfg.Method, target, nil)
	if err != nil {
		return Outcome{URL: target, Failure: FailureOther, Err: err}
	}

	for name, values := range r.cfg.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}
	if r.cfg.Cookie != "" {
		req.Header.Set("Cookie", r.cfg.Cookie)
	}
	if host := r.cfg.Headers.Get("Host"); host != "" {
		req.Host = host
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return r.failure(ctx, target, start, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return r.failure(ctx, target, start, fmt.Errorf("reading response body: %w", err))
	}
	if n == 0 && resp.ContentLength > 0 {
		n = resp.ContentLength
	}

	out := Outcome{
		StatusCode:    resp.StatusCode,
		URL:           resp.Request.URL.String(),
		ContentLength: n,
		Duration:      time.Since(start),
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		out.RedirectURL = resp.Header.Get("Location")
	}
	return out
}

func (r *Requester) failure(ctx context.Context, target string, start time.Time, err error) Outcome {
	kind := ClassifyError(err)
	if ctx.Err() != nil {
		kind = FailureCanceled
	}
	return Outcome{
		URL:      target,
		Duration: time.Since(start),
		Failure:  kind,
		Err:      err,
	}
}

// Preflight checks that the base URL's host resolves and accepts TCP
// connections. It is skipped when a proxy is configured since the target
// is then only reachable through it.
func (r *Requester) Preflight(ctx context.Context) error {
	if r.cfg.Proxy != nil {
		return nil
	}
	u := r.cfg.BaseURL
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	conn, err := r.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s (%s): %v", ErrHostUnreachable, addr, ClassifyError(err), err)
	}
	return conn.Close()
}
