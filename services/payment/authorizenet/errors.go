package authorizenet

import "fmt"

// TransportError reports that the request never produced a usable HTTP
// response: connection failure, timeout, cancellation or a non-2xx status.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authorize.net transport error: %s returned HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("authorize.net transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not well-formed XML.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("authorize.net response is not valid XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProtocolError reports well-formed XML that lacks a node the client
// depends on.
type ProtocolError struct {
	Action Action
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected authorize.net response to %s: %s", e.Action, e.Reason)
}

// ValidationError is returned before any request is sent when caller input
// cannot be put on the wire.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
