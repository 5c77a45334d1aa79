package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound           = ErrorKind("Not Found")
	InvalidArgument    = ErrorKind("Invalid Argument")
	Unauthorized       = ErrorKind("Unauthorized")
	Conflict           = ErrorKind("Conflict")
	Unsupported        = ErrorKind("Unsupported")
	Timeout            = ErrorKind("Timeout")
	Closed             = ErrorKind("Closed")
	InternalError      = ErrorKind("Internal Error")
	SomethingWentWrong = ErrorKind("Something Went Wrong")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
