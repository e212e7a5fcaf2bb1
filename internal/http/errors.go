package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ErrorKind classifies a failed request attempt.
type ErrorKind string

const (
	// ErrConnection covers dial, DNS, refused/reset connections and TLS handshakes.
	ErrConnection ErrorKind = "ConnectionError"

	// ErrTimeout covers client timeouts and expired deadlines.
	ErrTimeout ErrorKind = "TimeoutError"

	// ErrProtocol covers malformed responses and anything not classified above.
	ErrProtocol ErrorKind = "ProtocolError"
)

// String returns the kind name.
func (k ErrorKind) String() string {
	return string(k)
}

// RequestError is returned by Send when no complete HTTP exchange took place.
type RequestError struct {
	Kind ErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Classify maps a transport error onto an ErrorKind.
//
// A nil error yields the empty kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ErrConnection
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return ErrConnection
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ErrConnection
	}

	return ErrProtocol
}
