package chatports

import "fmt"

// NotFoundOrForbiddenError signals a referenced conversation that does not
// exist or belongs to another user. Surfaced to callers as a client error,
// never retried.
type NotFoundOrForbiddenError struct {
	ConversationID string
}

func (e *NotFoundOrForbiddenError) Error() string {
	return fmt.Sprintf("conversation %s not found or not owned by caller", e.ConversationID)
}

// InvalidRequestError signals a caller request that cannot be processed:
// blank message, missing identifiers. A client error, distinct from
// ValidationError which marks an internally built provider request gone wrong.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// CompletionProviderError signals a failed or malformed upstream completion
// call. The turn is not partially saved when this surfaces.
type CompletionProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *CompletionProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion provider: %v", e.Err)
	}
	return fmt.Sprintf("completion provider: status %d: %s", e.StatusCode, e.Body)
}

func (e *CompletionProviderError) Unwrap() error { return e.Err }

// ValidationError signals a malformed request to the completion provider. It
// indicates a programming defect upstream and is fatal-and-logged, never
// retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid provider request: " + e.Reason
}

// PersistenceError signals a store write that failed after a successful
// completion. The answer is still returned to the caller; the inconsistency
// must be logged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
