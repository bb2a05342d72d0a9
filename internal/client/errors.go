package client

import "fmt"

// The error taxonomy for API operations. Controllers branch on these
// with errors.As; everything not recognized collapses into
// RequestError.

// ValidationError is raised client-side, before any network call,
// when a payload violates a precondition the server would reject.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateNameError maps 409: the owner already has a product with
// that name.
type DuplicateNameError struct {
	Message string
}

func (e *DuplicateNameError) Error() string { return e.Message }

// NotFoundError maps 404: the referenced entity no longer exists.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// EmptyListError maps the 404 precondition of bulk check-in: there is
// nothing to check in.
type EmptyListError struct {
	Message string
}

func (e *EmptyListError) Error() string { return e.Message }

// UnauthorizedError maps 401; callers redirect to login rather than
// rendering it inline.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// RequestError is any other non-2xx response or transport failure.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
