package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maxvaer/dirbust/internal/config"
)

func testConfig(t *testing.T, serverURL string, modify func(*config.Options)) *config.ScanConfig {
	t.Helper()
	opts := config.Defaults()
	opts.URL = serverURL
	opts.Timeout = 2 * time.Second
	if modify != nil {
		modify(&opts)
	}
	cfg, err := config.Build(&opts)
	if err != nil {
		t.Fatalf("config.Build: %v", err)
	}
	return cfg
}

// hangingServer never answers before the client gives up.
func hangingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestExecuteRetryBound(t *testing.T) {
	var hits atomic.Int32
	srv := hangingServer(t, &hits)

	cfg := testConfig(t, srv.URL, func(o *config.Options) {
		o.Timeout = 100 * time.Millisecond
		o.Retry = true
		o.RetryAttempts = 3
	})
	out := NewRequester(cfg, nil).Execute(context.Background(), srv.URL+"/slow")

	if out.Failure != FailureTimeout {
		t.Fatalf("failure = %s, want timeout (err: %v)", out.Failure, out.Err)
	}
	if out.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", out.Attempts)
	}
	if got := hits.Load(); got != 4 {
		t.Errorf("server saw %d requests, want 4", got)
	}
}

func TestExecuteNoRetryOnTimeoutWhenDisabled(t *testing.T) {
	var hits atomic.Int32
	srv := hangingServer(t, &hits)

	cfg := testConfig(t, srv.URL, func(o *config.Options) {
		o.Timeout = 100 * time.Millisecond
		o.Retry = false
		o.RetryAttempts = 5
	})
	out := NewRequester(cfg, nil).Execute(context.Background(), srv.URL+"/slow")

	if out.Failure != FailureTimeout {
		t.Fatalf("failure = %s, want timeout", out.Failure)
	}
	if out.Attempts != 1 || hits.Load() != 1 {
		t.Errorf("attempts = %d, hits = %d, want exactly one", out.Attempts, hits.Load())
	}
}

func TestExecuteConnectionRefusedIsTerminal(t *testing.T) {
	base := "http://" + closedAddr(t)
	cfg := testConfig(t, base, func(o *config.Options) {
		o.Retry = true
		o.RetryAttempts = 3
	})
	out := NewRequester(cfg, nil).Execute(context.Background(), base+"/admin")

	if out.Failure != FailureConnection {
		t.Fatalf("failure = %s, want connection (err: %v)", out.Failure, out.Err)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, connection errors must not be retried", out.Attempts)
	}
}

func TestExecuteForwardsMethodHeadersAndCookie(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		fmt.Fprint(w, "hello")
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL, func(o *config.Options) {
		o.Method = "post"
		o.Headers = []string{"X-Token: abc", "X-Multi: one", "X-Multi: two"}
		o.Cookies = "session=1; theme=dark"
		o.UserAgent = "custom-agent"
	})
	out := NewRequester(cfg, nil).Execute(context.Background(), srv.URL+"/upload")

	if !out.OK() || out.StatusCode != 200 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.ContentLength != 5 {
		t.Errorf("ContentLength = %d, want 5", out.ContentLength)
	}
	if got.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.Method)
	}
	if got.Header.Get("X-Token") != "abc" {
		t.Errorf("X-Token = %q", got.Header.Get("X-Token"))
	}
	if v := got.Header.Values("X-Multi"); len(v) != 2 {
		t.Errorf("X-Multi = %v, want both values", v)
	}
	if got.Header.Get("Cookie") != "session=1; theme=dark" {
		t.Errorf("Cookie = %q", got.Header.Get("Cookie"))
	}
	if got.Header.Get("User-Agent") != "custom-agent" {
		t.Errorf("User-Agent = %q", got.Header.Get("User-Agent"))
	}
}

func TestExecuteRedirectPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		case "/new":
			fmt.Fprint(w, "moved here")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("not followed", func(t *testing.T) {
		cfg := testConfig(t, srv.URL, nil)
		out := NewRequester(cfg, nil).Execute(context.Background(), srv.URL+"/old")
		if out.StatusCode != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want 301", out.StatusCode)
		}
		if out.RedirectURL != "/new" {
			t.Errorf("RedirectURL = %q, want /new", out.RedirectURL)
		}
		if out.URL != srv.URL+"/old" {
			t.Errorf("URL = %q, want the requested URL", out.URL)
		}
	})

	t.Run("followed", func(t *testing.T) {
		cfg := testConfig(t, srv.URL, func(o *config.Options) { o.FollowRedirects = true })
		out := NewRequester(cfg, nil).Execute(context.Background(), srv.URL+"/old")
		if out.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", out.StatusCode)
		}
		if out.URL != srv.URL+"/new" {
			t.Errorf("effective URL = %q, want %s/new", out.URL, srv.URL)
		}
	})
}

func TestExecuteTLSValidation(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer srv.Close()

	strict := testConfig(t, srv.URL, nil)
	out := NewRequester(strict, nil).Execute(context.Background(), srv.URL+"/")
	if out.Failure != FailureTLS {
		t.Fatalf("failure = %s, want tls (err: %v)", out.Failure, out.Err)
	}

	lax := testConfig(t, srv.URL, func(o *config.Options) { o.NoTLSValidation = true })
	out = NewRequester(lax, nil).Execute(context.Background(), srv.URL+"/")
	if !out.OK() || out.StatusCode != 200 {
		t.Fatalf("expected 200 with TLS validation disabled, got %+v", out)
	}
}

func TestExecuteCanceledContext(t *testing.T) {
	var hits atomic.Int32
	srv := hangingServer(t, &hits)
	cfg := testConfig(t, srv.URL, func(o *config.Options) {
		o.Retry = true
		o.RetryAttempts = 3
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	out := NewRequester(cfg, nil).Execute(ctx, srv.URL+"/slow")
	if out.Failure != FailureCanceled {
		t.Fatalf("failure = %s, want canceled", out.Failure)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, cancellation must not be retried", out.Attempts)
	}
}

func TestPreflight(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if err := NewRequester(testConfig(t, srv.URL, nil), nil).Preflight(context.Background()); err != nil {
		t.Fatalf("Preflight on live server: %v", err)
	}

	dead := testConfig(t, "http://"+closedAddr(t), nil)
	err := NewRequester(dead, nil).Preflight(context.Background())
	if !errors.Is(err, ErrHostUnreachable) {
		t.Fatalf("Preflight on closed port = %v, want ErrHostUnreachable", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"canceled", fmt.Errorf("get: %w", context.Canceled), FailureCanceled},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), FailureTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}, FailureDNS},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("boom")}, FailureConnection},
		{"other", errors.New("malformed HTTP response"), FailureOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailureKindTransport(t *testing.T) {
	for _, k := range []FailureKind{FailureTimeout, FailureConnection, FailureDNS, FailureTLS} {
		if !k.Transport() {
			t.Errorf("%s should count as a transport failure", k)
		}
	}
	for _, k := range []FailureKind{FailureNone, FailureCanceled, FailureOther} {
		if k.Transport() {
			t.Errorf("%s should not count as a transport failure", k)
		}
	}
	if !strings.Contains(FailureDNS.String(), "dns") {
		t.Errorf("unexpected String(): %s", FailureDNS)
	}
}
