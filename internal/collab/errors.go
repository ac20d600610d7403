package collab

import "fmt"

// ConnectionError reports a failed handshake or a transport-level send
// failure. Callers may retry Connect.
type ConnectionError struct {
	Stage string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("collab %s: %v", e.Stage, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// OperationError wraps a dequeued operation that could not be applied, most
// often an update or transform against an element that no longer exists.
// These are logged and dropped; they never halt the queue drain.
type OperationError struct {
	OpID      string
	ElementID string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s on element %s: %v", e.OpID, e.ElementID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
