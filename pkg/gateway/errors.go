package gateway

import "fmt"

// RequestError is returned for any non-2xx response. Message carries the
// server-supplied error field when present, else the HTTP status text, else
// a generic fallback.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// TransportError is returned when the request never produced an HTTP
// response (DNS failure, refused connection, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
