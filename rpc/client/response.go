package client

import "fmt"

// Response is the uniform outcome of a correlated operation: either a success
// or a failure carrying the reason reported by the relay.
// Protocol-level failures are never returned as Go errors.
type Response struct {
	Success bool
	Message string // reason of the failure, empty on success
}

// ProtocolError is the error form of a failed Response
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("relay error: %s", e.Reason)
}

// newResponse creates a success response for an empty reason, a failure otherwise
func newResponse(reason string) Response {
	if reason == "" {
		return Response{Success: true}
	}
	return Response{Message: reason}
}

// Err returns nil on success and a *ProtocolError on failure
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	return &ProtocolError{Reason: r.Message}
}

// String returns a short representation of the response
func (r Response) String() string {
	if r.Success {
		return "success"
	}
	return fmt.Sprintf("failure: %s", r.Message)
}

// failureReason returns the reason carried by an errorMsg frame, never empty
func failureReason(payload string) string {
	if payload == "" {
		return "unknown error"
	}
	return payload
}
