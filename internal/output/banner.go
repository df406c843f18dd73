package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/maxvaer/dirbust/internal/config"
	"github.com/maxvaer/dirbust/pkg/version"
)

const logo = `
     ___  _     __               __
    / _ \(_)___/ /  __ _____ ___/ /_
   / // / / __/ _ \/ // (_-</ __/ __/
  /____/_/_/ /_.__/\_,_/___/\__/\__/ `

// PrintBanner writes the logo and a summary of the scan settings to w.
// wordlistLines is 0 when the size is unknown.
func PrintBanner(w io.Writer, cfg *config.ScanConfig, wordlistPath string, wordlistLines int, noColor bool) {
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)
	white := color.New(color.FgHiWhite)
	yellow := color.New(color.FgYellow)
	if noColor {
		for _, c := range []*color.Color{red, dim, white, yellow} {
			c.DisableColor()
		}
	}

	red.Fprint(w, logo)
	dim.Fprintf(w, " v%s\n\n", version.Version)

	row := func(label, value string, c *color.Color) {
		dim.Fprintf(w, "  %-16s", label+":")
		c.Fprintln(w, value)
	}
	rule := strings.Repeat("─", 48)

	dim.Fprintf(w, "  %s\n", rule)
	row("Target", cfg.BaseURL.String(), white)
	row("Method", cfg.Method, white)
	row("Threads", fmt.Sprint(cfg.Concurrency), yellow)
	words := wordlistPath
	if wordlistLines > 0 {
		words = fmt.Sprintf("%s (%d entries)", wordlistPath, wordlistLines)
	}
	row("Wordlist", words, white)
	if len(cfg.Extensions) > 0 {
		row("Extensions", strings.Join(cfg.Extensions, ", "), white)
	}
	row("Status policy", cfg.Policy.String(), white)
	if len(cfg.ExcludeSizes) > 0 {
		sizes := make([]string, len(cfg.ExcludeSizes))
		for i, s := range cfg.ExcludeSizes {
			sizes[i] = fmt.Sprint(s)
		}
		row("Exclude sizes", strings.Join(sizes, ", "), white)
	}
	row("Timeout", cfg.Timeout.String(), white)
	if cfg.Retry {
		row("Retry", fmt.Sprintf("%d attempts on timeout", cfg.RetryAttempts), white)
	}
	if cfg.FollowRedirects {
		row("Redirects", "follow", white)
	}
	if cfg.Proxy != nil {
		row("Proxy", cfg.Proxy.Redacted(), white)
	}
	if cfg.RateLimit > 0 {
		row("Rate limit", fmt.Sprintf("%d req/s", cfg.RateLimit), yellow)
	}
	if cfg.AdaptiveThrottle {
		row("Throttle", "adaptive", yellow)
	}
	dim.Fprintf(w, "  %s\n\n", rule)
}
