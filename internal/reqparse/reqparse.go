package reqparse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"os"
	"sort"
	"strings"
)

// Request is the scan template extracted from a raw HTTP request file.
type Request struct {
	Method  string
	BaseURL string   // scheme and host only; wordlist paths are appended to it
	Headers []string // "Name: value", sorted by name, Host and Cookie excluded
	Cookie  string
}

// headers that describe the captured exchange rather than the scan.
var skipHeaders = map[string]struct{}{
	"Host":            {},
	"Cookie":          {},
	"Content-Length":  {},
	"Accept-Encoding": {},
	"Connection":      {},
}

// ParseFile reads a raw HTTP request (e.g. a Burp Suite export).
func ParseFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening request file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a raw HTTP request from r. The scheme is https unless the
// Host names port 80 or the request line carries an absolute http URL.
func Parse(r io.Reader) (*Request, error) {
	tp := textproto.NewReader(bufio.NewReaderSize(r, 64*1024))

	line, err := tp.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("request file is empty")
		}
		return nil, fmt.Errorf("reading request line: %w", err)
	}
	var method, target, proto string
	if fields := strings.Fields(line); len(fields) >= 2 {
		method, target = fields[0], fields[1]
		if len(fields) > 2 {
			proto = fields[2]
		}
	}
	if method == "" || target == "" {
		return nil, fmt.Errorf("invalid request line: %q", line)
	}

	mime, err := tp.ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading request headers: %w", err)
	}

	req := &Request{
		Method: strings.ToUpper(method),
		Cookie: strings.Join(mime.Values("Cookie"), "; "),
	}

	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid URL in request line: %w", err)
		}
		req.BaseURL = u.Scheme + "://" + u.Host
	} else {
		host := mime.Get("Host")
		if host == "" {
			return nil, errors.New("request file missing Host header")
		}
		scheme := "https"
		if strings.HasPrefix(strings.ToUpper(proto), "HTTP/1") && strings.HasSuffix(host, ":80") {
			scheme = "http"
		}
		req.BaseURL = scheme + "://" + host
	}

	names := make([]string, 0, len(mime))
	for name := range mime {
		if _, skip := skipHeaders[name]; !skip {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range mime[name] {
			req.Headers = append(req.Headers, name+": "+v)
		}
	}
	return req, nil
}

// Header returns the first value of the named header, or "".
func (r *Request) Header(name string) string {
	prefix := textproto.CanonicalMIMEHeaderKey(name) + ": "
	for _, h := range r.Headers {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimPrefix(h, prefix)
		}
	}
	return ""
}
