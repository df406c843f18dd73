package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/dirbust/internal/reqparse"
	"github.com/maxvaer/dirbust/internal/runner"
)

var dirHelpGroups = []flagGroup{
	{"TARGET", []string{"url", "wordlist", "extensions", "add-slash"}},
	{"HTTP", []string{"method", "headers", "cookies", "user-agent", "proxy", "timeout", "follow-redirect", "no-tls-validation", "retry", "retry-attempts"}},
	{"MATCHERS", []string{"status-codes", "status-codes-blacklist", "exclude-size"}},
	{"RATE-LIMIT", []string{"threads", "rate-limit", "adaptive-throttle", "max-failures", "grace-period"}},
	{"OUTPUT", []string{"output", "format", "no-status", "ordered", "quiet", "no-color", "no-error", "no-progress", "verbose"}},
	{"CONFIGURATION", []string{"config", "resume-file", "request-file", "on-result"}},
}

var dirCmd = &cobra.Command{
	Use:   "dir -u <url> -w <wordlist> [flags]",
	Short: "Enumerate directories and files",
	Long: `Probe the target for every wordlist entry, optionally with each of the
given extensions appended, and print the paths whose status code passes
the allow-list or deny-list. Press Enter or Space to pause and resume.`,
	Example: `  dirbust dir -u https://example.com -w common.txt
  dirbust dir -u https://example.com -w common.txt -x php,html -t 50
  dirbust dir -u https://example.com -w common.txt -s 200,204,301,302,307,401,403
  dirbust dir -u https://example.com -w common.txt -b 404,500 -R --retry-attempts 5
  cat words.txt | dirbust dir -u https://example.com -w -
  dirbust dir --config scan.yaml -o results.json --format json`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.RequestFile != "" {
			if err := applyRequestFile(cmd.Flags(), opts.RequestFile); err != nil {
				return err
			}
		}
		if opts.URL == "" {
			return errors.New("target required: use -u/--url")
		}
		if opts.WordlistPath == "" {
			return errors.New("wordlist required: use -w/--wordlist (- for stdin)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts)
	},
}

func init() {
	f := dirCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "The target URL")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Path to the wordlist (- reads from stdin)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "x", nil, "File extensions to search for (e.g. php,html)")
	f.BoolVarP(&opts.AddSlash, "add-slash", "f", false, "Append / to each request")

	// HTTP
	f.StringVarP(&opts.Method, "method", "m", "GET", "HTTP method to use")
	f.StringArrayVarP(&opts.Headers, "headers", "H", nil, "Header to send (Name: value), repeatable")
	f.StringVarP(&opts.Cookies, "cookies", "c", "", "Cookies to use for the requests")
	f.StringVar(&opts.UserAgent, "user-agent", "", "User-Agent string (default dirbust/1.0)")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP or SOCKS5 proxy URL")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP timeout per request")
	f.BoolVarP(&opts.FollowRedirects, "follow-redirect", "r", false, "Follow redirects")
	f.BoolVarP(&opts.NoTLSValidation, "no-tls-validation", "k", false, "Skip TLS certificate verification")
	f.BoolVarP(&opts.Retry, "retry", "R", false, "Retry requests that time out")
	f.IntVar(&opts.RetryAttempts, "retry-attempts", 3, "Retries per request when --retry is set")

	// Status filtering. The blacklist default is applied in config so that
	// an allow-list alone can take effect.
	f.VarP(&intSliceValue{target: &opts.AllowStatus, what: "status code"}, "status-codes", "s", "Positive status codes (allow-list)")
	f.VarP(&intSliceValue{target: &opts.DenyStatus, what: "status code"}, "status-codes-blacklist", "b", "Negative status codes, overrides --status-codes (default 404)")
	f.Var(&intSliceValue{target: &opts.ExcludeSize, what: "size"}, "exclude-size", "Hide responses of these body sizes")

	// Performance and abort policy
	f.IntVarP(&opts.Threads, "threads", "t", 10, "Number of concurrent requests")
	f.IntVar(&opts.RateLimit, "rate-limit", 0, "Maximum requests per second across all threads (0 = unlimited)")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Back off automatically on 429/503 responses")
	f.IntVar(&opts.MaxFailures, "max-failures", 20, "Abort after this many consecutive network failures (0 = never)")
	f.DurationVar(&opts.GracePeriod, "grace-period", 3*time.Second, "Time in-flight requests get to finish after an interrupt")

	// Output
	f.BoolVarP(&opts.NoStatus, "no-status", "n", false, "Don't print status codes")
	f.BoolVar(&opts.Ordered, "ordered", false, "Print results in wordlist order once the scan ends")

	// Resume and integration
	f.StringVar(&opts.ResumeFile, "resume-file", "", "File to save/load scan progress for resume")
	f.StringVar(&opts.RequestFile, "request-file", "", "Raw HTTP request (e.g. Burp export) to take URL, method and headers from")
	f.StringVar(&opts.OnResult, "on-result", "", "Shell command run per found path; {url} {path} {status} {size} are expanded, JSON on stdin")

	dirCmd.SetHelpFunc(groupedHelp(dirHelpGroups))
	rootCmd.AddCommand(dirCmd)
}

// applyRequestFile fills url, method, headers, cookies and user agent from
// a raw request file. Flags given explicitly keep their values; headers
// from the file come before any given with -H.
func applyRequestFile(flags *pflag.FlagSet, path string) error {
	req, err := reqparse.ParseFile(path)
	if err != nil {
		return err
	}
	if !flags.Changed("url") {
		opts.URL = req.BaseURL
	}
	if !flags.Changed("method") {
		opts.Method = req.Method
	}
	if !flags.Changed("cookies") && req.Cookie != "" {
		opts.Cookies = req.Cookie
	}
	if !flags.Changed("user-agent") {
		if ua := req.Header("User-Agent"); ua != "" {
			opts.UserAgent = ua
		}
	}
	headers := make([]string, 0, len(req.Headers)+len(opts.Headers))
	for _, h := range req.Headers {
		if !strings.HasPrefix(h, "User-Agent:") {
			headers = append(headers, h)
		}
	}
	opts.Headers = append(headers, opts.Headers...)
	return nil
}
