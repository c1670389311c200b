package services

import "fmt"

// TransportError is a network-level failure talking to a generation service:
// connection refused, timeout, or a broken body read. The generators treat
// it as a fallback trigger, never a fatal job error.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamResponseError is a malformed or unsuccessful response from a
// generation service: non-2xx status, missing asset reference, or an
// unsupported content type. Also a fallback trigger, never fatal.
type UpstreamResponseError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *UpstreamResponseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s response invalid: %s", e.Service, e.Detail)
}

// truncate limits a string to maxLen characters for error and log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
