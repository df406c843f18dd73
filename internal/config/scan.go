package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidURL         = errors.New("invalid base URL")
	ErrInvalidHeader      = errors.New("invalid header")
	ErrInvalidMethod      = errors.New("invalid HTTP method")
	ErrInvalidStatus      = errors.New("invalid status code")
	ErrInvalidConcurrency = errors.New("invalid concurrency")
)

// DefaultDenyStatus is applied when neither an allow-list nor a deny-list
// is supplied.
var DefaultDenyStatus = []int{404}

const defaultUserAgent = "dirbust/1.0"

var standardMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// ScanConfig is the validated, immutable configuration shared read-only by
// every worker of a scan. Never mutate it after Build returns.
type ScanConfig struct {
	BaseURL         *url.URL
	Method          string
	Extensions      []string
	AddSlash        bool
	Headers         http.Header
	Cookie          string
	UserAgent       string
	Proxy           *url.URL
	FollowRedirects bool
	SkipTLSVerify   bool
	Timeout         time.Duration

	Retry         bool
	RetryAttempts int

	Policy       StatusPolicy
	ExcludeSizes []int

	Concurrency      int
	RateLimit        int
	AdaptiveThrottle bool
	MaxFailures      int
	GracePeriod      time.Duration
}

// Build validates opts and returns the ScanConfig for the scan. Every error
// it returns is a configuration error: the scan must not start.
func Build(opts *Options) (*ScanConfig, error) {
	base, err := parseBaseURL(opts.URL)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	if _, ok := standardMethods[method]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, opts.Method)
	}

	headers, err := ParseHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}

	if opts.Threads < 1 {
		return nil, fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidConcurrency, opts.Threads)
	}
	if opts.RetryAttempts < 0 {
		return nil, fmt.Errorf("retry attempts must not be negative, got %d", opts.RetryAttempts)
	}
	if opts.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative, got %d", opts.RateLimit)
	}

	if len(opts.AllowStatus) > 0 && len(opts.DenyStatus) > 0 {
		log.Warn("both status-codes and status-codes-blacklist are set, the allow-list is ignored")
	}
	policy, err := NewStatusPolicy(opts.AllowStatus, opts.DenyStatus)
	if err != nil {
		return nil, err
	}

	var proxy *url.URL
	if opts.Proxy != "" {
		proxy, err = url.Parse(opts.Proxy)
		if err != nil || proxy.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", opts.Proxy)
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ScanConfig{
		BaseURL:          base,
		Method:           method,
		Extensions:       normalizeExtensions(opts.Extensions),
		AddSlash:         opts.AddSlash,
		Headers:          headers,
		Cookie:           strings.TrimSpace(opts.Cookies),
		UserAgent:        ua,
		Proxy:            proxy,
		FollowRedirects:  opts.FollowRedirects,
		SkipTLSVerify:    opts.NoTLSValidation,
		Timeout:          timeout,
		Retry:            opts.Retry,
		RetryAttempts:    opts.RetryAttempts,
		Policy:           policy,
		ExcludeSizes:     opts.ExcludeSize,
		Concurrency:      opts.Threads,
		RateLimit:        opts.RateLimit,
		AdaptiveThrottle: opts.AdaptiveThrottle,
		MaxFailures:      opts.MaxFailures,
		GracePeriod:      opts.GracePeriod,
	}, nil
}

// Attempts returns the maximum number of requests issued for one candidate.
func (c *ScanConfig) Attempts() int {
	if !c.Retry {
		return 1
	}
	return c.RetryAttempts + 1
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w %q: must be absolute (e.g. https://example.com)", ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidURL, raw, u.Scheme)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

// ParseHeaders parses "Name: value" pairs. Repeated names keep every value.
func ParseHeaders(raw []string) (http.Header, error) {
	headers := make(http.Header, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("%w %q: missing colon separator, expected 'Name: value'", ErrInvalidHeader, h)
		}
		name = strings.TrimSpace(name)
		if !validHeaderName(name) {
			return nil, fmt.Errorf("%w %q: bad header name", ErrInvalidHeader, h)
		}
		value = strings.TrimSpace(value)
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("%w %q: bad header value", ErrInvalidHeader, h)
		}
		headers.Add(name, value)
	}
	return headers, nil
}

func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}

// normalizeExtensions drops blanks and a single leading dot. Order and
// duplicates are preserved.
func normalizeExtensions(exts []string) []string {
	var out []string
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
