package errors

// Errors bubbling up to a handler default to 500.
// Wrap with ErrorWithStatusCode when a different status applies.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}
