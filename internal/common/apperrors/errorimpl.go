package apperrors

import "strings"

// appError implements the apperrors.Error interface
type appError struct {
	msg           string
	base          Error
	wrappedErrors []error
	statuscode    int
	reason        string
	expandError   bool
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError || len(e.wrappedErrors) == 0 {
		return e.msg
	}
	parts := make([]string, 0, len(e.wrappedErrors))
	for _, err := range e.wrappedErrors {
		parts = append(parts, err.Error())
	}
	return e.msg + ": " + strings.Join(parts, ";")
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

// derive copies e into a child whose base is e.
func (e *appError) derive() *appError {
	return &appError{
		msg:         e.msg,
		base:        e,
		statuscode:  e.statuscode,
		reason:      e.reason,
		expandError: e.expandError,
	}
}

func (e *appError) New(msg string) Error {
	d := e.derive()
	d.msg = msg
	return d
}

func (e *appError) Msg(msg string) Error {
	d := e.derive()
	d.msg = msg
	return d
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	d := e.derive()
	d.msg = msg
	d.wrappedErrors = append(d.wrappedErrors, err...)
	return d
}

func (e *appError) Err(err ...error) Error {
	d := e.derive()
	d.wrappedErrors = append(d.wrappedErrors, err...)
	return d
}

func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e == target {
		return true
	}
	if e.base != nil && (e.base == target || e.base.Is(target)) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if err == target {
			return true
		}
	}
	return false
}

// The setters below configure a value in place and are meant for
// sentinel declarations.

func (e *appError) SetExpandError(expand bool) Error {
	e.expandError = expand
	return e
}

func (e *appError) SetStatusCode(code int) Error {
	e.statuscode = code
	return e
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func (e *appError) SetReason(reason string) Error {
	e.reason = reason
	return e
}

func (e *appError) Reason() string {
	return e.reason
}

func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
