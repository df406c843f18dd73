package target

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/maxvaer/dirbust/internal/config"
)

// Candidate is one unit of work: a wordlist entry combined with an optional
// extension and the slash rule, resolved against the base URL.
type Candidate struct {
	Line      int    // 1-based wordlist line number
	Seq       int    // position among the candidates derived from the line
	Word      string // wordlist entry as read
	Extension string // empty when no extensions are configured
	Path      string // escaped request path, base URL path included
	URL       string
}

// Key identifies the candidate across runs (used by resume).
func (c Candidate) Key() string {
	return c.URL
}

// Resolve derives the candidates for one wordlist line. It is a pure
// function of its inputs and safe for concurrent use.
func Resolve(line string, cfg *config.ScanConfig) []Candidate {
	return ResolveAt(0, line, cfg)
}

// ResolveAt is Resolve with the wordlist line number recorded on every
// candidate.
func ResolveAt(lineNo int, line string, cfg *config.ScanConfig) []Candidate {
	if len(cfg.Extensions) == 0 {
		return []Candidate{build(lineNo, 0, line, "", line, cfg)}
	}
	out := make([]Candidate, 0, len(cfg.Extensions))
	for i, ext := range cfg.Extensions {
		out = append(out, build(lineNo, i, line, ext, line+"."+ext, cfg))
	}
	return out
}

// Count returns how many candidates lines wordlist lines expand to.
func Count(lines int, cfg *config.ScanConfig) int {
	return lines * max(1, len(cfg.Extensions))
}

func build(lineNo, seq int, word, ext, rel string, cfg *config.ScanConfig) Candidate {
	if cfg.AddSlash {
		rel += "/"
	}
	raw := strings.TrimRight(cfg.BaseURL.EscapedPath(), "/") + "/" + escapePath(strings.TrimLeft(rel, "/"))

	u := *cfg.BaseURL
	u.Path, _ = url.PathUnescape(raw) // escapePath leaves only valid %XX sequences
	u.RawPath = raw
	u.Fragment = ""
	u.RawFragment = ""

	return Candidate{
		Line:      lineNo,
		Seq:       seq,
		Word:      word,
		Extension: ext,
		Path:      raw,
		URL:       u.String(),
	}
}

// escapePath escapes the bytes of a wordlist entry that cannot appear in a
// URL path. Existing %XX escapes are kept as written so encoded entries
// such as %2e%2e/ reach the server unchanged; a % not followed by two hex
// digits becomes %25.
func escapePath(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				b.WriteByte(c)
			} else {
				b.WriteString("%25")
			}
		case pathSafe(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// pathSafe reports whether c may appear unescaped in a path: unreserved
// characters, sub-delims, ':', '@', '/' and the brackets net/url accepts.
func pathSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=:@/[]", c) >= 0
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
