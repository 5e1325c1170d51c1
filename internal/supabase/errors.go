package supabase

import "fmt"

// TransportError indicates the backing store could not be reached at all
// (connection refused, DNS failure, timeout). Safe to retry.
type TransportError struct {
	Table string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error querying %q: %v", e.Table, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates the store answered but the exchange was not a
// success: a non-2xx status or a body that could not be decoded. Usually
// means the request shape is wrong, so retrying will not help.
type ProtocolError struct {
	Table  string
	Status int
	Body   string
}

func (e *ProtocolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("protocol error querying %q: status %d: %s", e.Table, e.Status, e.Body)
	}
	return fmt.Sprintf("protocol error querying %q: %s", e.Table, e.Body)
}
