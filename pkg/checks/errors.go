package checks

import "fmt"

// AuthenticationError is returned when GitHub rejects the access token.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// RemoteServiceError carries any other failed API call. StatusCode is zero
// when no response was received.
type RemoteServiceError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Operation, e.StatusCode, e.Message)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}
