package billing

import "fmt"

// The billing error taxonomy. Route handlers return these unchanged; the
// fiber error handler in internal/pkg/middleware maps each type to a status
// code so controllers never hand-roll error responses.

// ValidationError marks bad, user-correctable input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a missing user, plan or subscription.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthenticationError marks a failed interactive credential check (login,
// session). Maps to 401.
type AuthenticationError struct {
	Msg string
}

func (e *AuthenticationError) Error() string { return e.Msg }

// SignatureError marks a webhook delivery whose signature does not verify.
// The delivery must be rejected without mutating any state, and with a 400
// rather than a 401 so the processor stops redelivering something that will
// never authenticate.
type SignatureError struct {
	Msg string
}

func (e *SignatureError) Error() string { return e.Msg }

// UpstreamError wraps a processor API failure. It is propagated, not retried:
// subscription creation is a user-interactive flow and the retry belongs to
// the client.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("processor %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConflictError marks a stale or duplicate event. These are expected under
// at-least-once delivery and absorbed silently rather than surfaced.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }
