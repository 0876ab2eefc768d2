package entities

import (
	"errors"
	"fmt"
)

var (
	ErrWalletUnavailable    = errors.New("wallet provider unavailable")
	ErrUserRejected         = errors.New("connection request was declined")
	ErrInvalidAddressFormat = errors.New("invalid address format")
	ErrInsufficientBalance  = errors.New("insufficient native balance")
	ErrDestinationNotFound  = errors.New("destination account not found")
	ErrContractUnavailable  = errors.New("contract service unavailable")
)

// NetworkError wraps an underlying RPC or backend transport failure so
// callers can distinguish unreachable infrastructure from chain-level
// rejections.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request-shape problem caught before any network
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
