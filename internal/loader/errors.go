package loader

import (
	"errors"
	"fmt"
	"time"
)

// ErrLoadTimeout matches every *LoadTimeoutError via errors.Is.
var ErrLoadTimeout = errors.New("resource load timed out")

// LoadTimeoutError reports a resource whose deadline elapsed before its fetch
// completed.
type LoadTimeoutError struct {
	Key     string
	Address string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *LoadTimeoutError) Error() string {
	subject := e.Address
	if subject == "" {
		subject = "resource"
	}
	return fmt.Sprintf("%s timed out after %s", subject, e.Timeout)
}

// Is makes errors.Is(err, ErrLoadTimeout) true.
func (e *LoadTimeoutError) Is(target error) bool {
	return target == ErrLoadTimeout
}
