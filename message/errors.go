package message

import "fmt"

// FormatError reports a message, wire line or command that violates the
// format rules. The reason names the first bound or pattern violated.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "message: invalid format: " + e.Reason
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
