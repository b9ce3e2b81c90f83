package wrike

import "fmt"

// RetrievalError reports a Wrike call that did not succeed. StatusCode is 0
// when no HTTP response was received; Err then holds the transport error.
type RetrievalError struct {
	Resource   string
	StatusCode int
	Body       string
	Err        error
}

func (e *RetrievalError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("wrike %s: %v", e.Resource, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("wrike %s: HTTP %d: %v", e.Resource, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("wrike %s: HTTP %d: %s", e.Resource, e.StatusCode, e.Body)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
