package apperrors

// Error is an application error that belongs to a hierarchy rooted at a
// package level sentinel. Deriving an error with New, Msg, MsgErr or Err
// returns a new value; sentinels are never mutated, so they can be shared
// across concurrent requests.
type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	MsgErr(msg string, err ...error) Error
	Msg(msg string) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
	SetReason(reason string) Error
	Reason() string
}
