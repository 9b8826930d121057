package stokercloud

import "fmt"

// AuthError signals that the remote service rejected our credentials or
// token. It covers both an explicit 401/403 status and the "token expired"
// style messages StokerCloud embeds in otherwise successful responses.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stokercloud auth: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("stokercloud auth: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// FetchError signals that a telemetry or event-log request failed after the
// single permitted re-login retry, or failed for a non-auth reason.
type FetchError struct {
	Op    string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("stokercloud fetch %s: %v", e.Op, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }
