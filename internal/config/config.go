package config

import "time"

// Options holds the raw, unvalidated input for a dirbust scan as collected
// from flags and the optional config file. Build turns it into a ScanConfig.
type Options struct {
	// Target
	URL          string
	WordlistPath string // "-" reads from stdin
	Extensions   []string
	AddSlash     bool

	// HTTP
	Method          string
	Headers         []string // "Name: value"
	Cookies         string
	UserAgent       string
	Proxy           string
	FollowRedirects bool
	NoTLSValidation bool
	Timeout         time.Duration

	// Retry
	Retry         bool
	RetryAttempts int

	// Status filtering. An empty list means the option was not supplied.
	AllowStatus []int
	DenyStatus  []int
	ExcludeSize []int

	// Performance
	Threads          int
	RateLimit        int // requests per second, 0 = unlimited
	AdaptiveThrottle bool

	// Abort policy
	MaxFailures int
	GracePeriod time.Duration

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv"
	Quiet        bool
	NoColor      bool
	NoError      bool
	NoProgress   bool
	NoStatus     bool
	Ordered      bool
	Verbose      bool

	// Resume
	ResumeFile string

	// Integration
	RequestFile string // raw HTTP request used as a template
	OnResult    string // shell command run for each found path
}

// Defaults returns Options populated with the same defaults the CLI uses.
func Defaults() Options {
	return Options{
		Method:        "GET",
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
		Threads:       10,
		MaxFailures:   20,
		GracePeriod:   3 * time.Second,
		OutputFormat:  "text",
	}
}
