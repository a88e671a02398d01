package remote

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// StatusError is a non-2xx response from the remote service.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Kind classifies a remote failure for user-facing messaging. Regardless
// of kind, a failed call means "the operation failed, nothing was mutated
// remotely".
type Kind string

const (
	KindHTTP    Kind = "http"
	KindTimeout Kind = "timeout"
	KindDNS     Kind = "dns"
	KindRefused Kind = "connection refused"
	KindTLS     Kind = "tls"
	KindOther   Kind = "transport"
)

// Classify maps an error returned by the client to its diagnostic kind.
func Classify(err error) Kind {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindHTTP
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) {
		return KindTLS
	}
	return KindOther
}

// Describe renders a one-line user-facing diagnosis of a remote failure.
func Describe(err error) string {
	kind := Classify(err)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("remote service rejected the request (HTTP %d): %s", statusErr.Status, statusErr.Message)
	}
	return fmt.Sprintf("remote service unreachable (%s): %v", kind, err)
}
