package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestIntSliceValue(t *testing.T) {
	var codes []int
	v := &intSliceValue{target: &codes, what: "status code"}
	if err := v.Set("200, 301,,403"); err != nil {
		t.Fatal(err)
	}
	if err := v.Set("500"); err != nil {
		t.Fatal(err)
	}
	if v.String() != "200,301,403,500" {
		t.Errorf("String() = %q", v.String())
	}
	if err := v.Set("abc"); err == nil {
		t.Error("expected error for non-numeric code")
	}
}

func TestApplyConfigFileExplicitFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	content := `threads: 50
extensions: [php, html]
headers:
  - "X-Token: abc"
  - "Accept: */*"
status-codes: "200,204"
follow-redirect: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var (
		threads   int
		exts      []string
		headers   []string
		allow     []int
		redirects bool
	)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntVarP(&threads, "threads", "t", 10, "")
	fs.StringSliceVarP(&exts, "extensions", "x", nil, "")
	fs.StringArrayVarP(&headers, "headers", "H", nil, "")
	fs.Var(&intSliceValue{target: &allow, what: "status code"}, "status-codes", "")
	fs.BoolVarP(&redirects, "follow-redirect", "r", false, "")

	if err := fs.Parse([]string{"-t", "5"}); err != nil {
		t.Fatal(err)
	}
	if err := applyConfigFile(fs, path); err != nil {
		t.Fatalf("applyConfigFile: %v", err)
	}

	if threads != 5 {
		t.Errorf("threads = %d, explicit flag must win", threads)
	}
	if len(exts) != 2 || exts[1] != "html" {
		t.Errorf("extensions = %v", exts)
	}
	if len(headers) != 2 || headers[0] != "X-Token: abc" {
		t.Errorf("headers = %v", headers)
	}
	if len(allow) != 2 || allow[1] != 204 {
		t.Errorf("status-codes = %v", allow)
	}
	if !redirects {
		t.Error("follow-redirect should be set from the file")
	}
}

func TestApplyConfigFileUnknownFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte("smart-filter: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := applyConfigFile(fs, path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDirCommandFlags(t *testing.T) {
	for _, name := range []string{"url", "wordlist", "extensions", "add-slash", "cookies", "headers", "method",
		"follow-redirect", "no-tls-validation", "retry", "retry-attempts", "status-codes",
		"status-codes-blacklist", "no-status", "threads", "timeout", "proxy", "user-agent",
		"rate-limit", "adaptive-throttle", "exclude-size", "max-failures", "grace-period",
		"resume-file", "ordered", "request-file", "on-result"} {
		if dirCmd.Flags().Lookup(name) == nil {
			t.Errorf("dir command is missing --%s", name)
		}
	}
	for _, name := range []string{"quiet", "no-color", "no-error", "no-progress", "output", "format", "verbose", "config"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root command is missing --%s", name)
		}
	}
}

func TestApplyRequestFile(t *testing.T) {
	saved := opts
	t.Cleanup(func() { opts = saved })

	path := filepath.Join(t.TempDir(), "req.txt")
	content := "POST /login HTTP/1.1\r\n" +
		"Host: target.test:80\r\n" +
		"User-Agent: Burp\r\n" +
		"Cookie: sid=1\r\n" +
		"X-Api-Key: k\r\n\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVarP(&opts.URL, "url", "u", "", "")
	fs.StringVarP(&opts.Method, "method", "m", "GET", "")
	fs.StringArrayVarP(&opts.Headers, "headers", "H", nil, "")
	fs.StringVarP(&opts.Cookies, "cookies", "c", "", "")
	fs.StringVar(&opts.UserAgent, "user-agent", "", "")
	if err := fs.Parse([]string{"-m", "HEAD", "-H", "X-Extra: 1"}); err != nil {
		t.Fatal(err)
	}

	if err := applyRequestFile(fs, path); err != nil {
		t.Fatalf("applyRequestFile: %v", err)
	}
	if opts.URL != "http://target.test:80" {
		t.Errorf("url = %q", opts.URL)
	}
	if opts.Method != "HEAD" {
		t.Errorf("method = %q, explicit flag should win", opts.Method)
	}
	if opts.Cookies != "sid=1" || opts.UserAgent != "Burp" {
		t.Errorf("cookies = %q, user-agent = %q", opts.Cookies, opts.UserAgent)
	}
	if len(opts.Headers) != 2 || opts.Headers[0] != "X-Api-Key: k" || opts.Headers[1] != "X-Extra: 1" {
		t.Errorf("headers = %q", opts.Headers)
	}
}
