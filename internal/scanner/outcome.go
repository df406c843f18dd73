package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
	"time"
)

// FailureKind classifies why a request produced no response.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTimeout
	FailureConnection
	FailureDNS
	FailureTLS
	FailureCanceled
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection"
	case FailureDNS:
		return "dns"
	case FailureTLS:
		return "tls"
	case FailureCanceled:
		return "canceled"
	default:
		return "error"
	}
}

// Transport reports whether the failure says something about the target's
// reachability, as opposed to a local cancellation or a malformed exchange.
func (k FailureKind) Transport() bool {
	switch k {
	case FailureTimeout, FailureConnection, FailureDNS, FailureTLS:
		return true
	}
	return false
}

// Outcome is the result of executing one request URL: either a response or
// a terminal failure.
type Outcome struct {
	StatusCode    int
	URL           string // effective URL after redirects
	RedirectURL   string // Location header when redirects are not followed
	ContentLength int64
	Duration      time.Duration
	Attempts      int

	Failure FailureKind
	Err     error
}

// OK reports whether a response (of any status) was received.
func (o Outcome) OK() bool {
	return o.Failure == FailureNone
}

// ClassifyError maps a request error onto a FailureKind. The order matters:
// a DNS lookup that times out is still a DNS failure.
func ClassifyError(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}

	var (
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		verifyErr    *tls.CertificateVerificationError
		recordHdrErr tls.RecordHeaderError
		alertErr     tls.AlertError
	)
	if errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &verifyErr) ||
		errors.As(err, &recordHdrErr) || errors.As(err, &alertErr) {
		return FailureTLS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return FailureConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return FailureConnection
	}

	return FailureOther
}
