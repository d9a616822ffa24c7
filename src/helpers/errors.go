package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
//
// One concrete type per failure class: transport faults feed the reconnect
// machine, protocol faults are logged and dropped, unsupported-exchange is
// a rejected call, persistence faults degrade to empty state.
// -----------------------------------------------------------------------------

type ChartCollabError struct {
	Message string
	Cause   error
}

func (e *ChartCollabError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ChartCollabError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

type TransportError struct{ ChartCollabError }
type ProtocolError struct{ ChartCollabError }
type UnsupportedExchangeError struct{ ChartCollabError }
type PersistenceError struct{ ChartCollabError }

// -----------------------------------------------------------------------------

func NewTransportError(msg string, cause error) *TransportError {
	return &TransportError{ChartCollabError{Message: msg, Cause: cause}}
}

func NewProtocolError(msg string, cause error) *ProtocolError {
	return &ProtocolError{ChartCollabError{Message: msg, Cause: cause}}
}

func NewUnsupportedExchangeError(exchange string) *UnsupportedExchangeError {
	return &UnsupportedExchangeError{ChartCollabError{
		Message: fmt.Sprintf("exchange %s not supported", exchange),
	}}
}

func NewPersistenceError(msg string, cause error) *PersistenceError {
	return &PersistenceError{ChartCollabError{Message: msg, Cause: cause}}
}
