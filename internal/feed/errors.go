package feed

import "fmt"

const defaultErrorMessage = "An error occurred"

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}
