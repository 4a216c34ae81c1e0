package errors

// ErrorCode identifies a failure category. Packages declare their own codes
// next to the code that returns them.
type ErrorCode string

// Error is a coded error with optional message, wrapped cause and data
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
