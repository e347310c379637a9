package httpx

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	json "github.com/json-iterator/go"
)

type Error struct {
	Description string `json:"description"`
	StatusCode  int    `json:"http_status_code"`
	Reason      string `json:"reason,omitempty"`
}

type errorRsp struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

const Failure int = 0

func (e *Error) Send(w http.ResponseWriter) {
	if w != nil {
		rsp := &errorRsp{
			Result: Failure,
			Error:  e.Description,
			Reason: e.Reason,
		}
		rspJson, err := json.Marshal(rsp)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Unable to parse error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.StatusCode)
		w.Write(rspJson)
	}
}

func (e *Error) Error() string {
	return e.Description
}

// SendError renders an application error. Errors without a status code,
// and server side failures, are reported with a generic description.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	statusCode := err.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	desc := err.ErrorAll()
	if statusCode >= http.StatusInternalServerError {
		desc = "Unable to process request"
	}
	httperror := &Error{
		StatusCode:  statusCode,
		Description: desc,
		Reason:      err.Reason(),
	}
	httperror.Send(w)
}

// Common Errors

func ErrReqMethodNotSupported() *Error {
	return &Error{
		Description: "Request Method Not Supported",
		StatusCode:  http.StatusMethodNotAllowed,
	}
}

func ErrUnableToParseReqData() *Error {
	return &Error{
		Description: "Unable to parse request",
		StatusCode:  http.StatusBadRequest,
	}
}

func ErrUnableToReadRequest() *Error {
	return &Error{
		Description: "Unable to read request",
		StatusCode:  http.StatusBadRequest,
	}
}

func ErrApplicationError(err ...string) *Error {
	var s string
	if len(err) > 0 {
		s = err[0]
	} else {
		s = "Unable to process request"
	}
	return &Error{
		Description: s,
		StatusCode:  http.StatusInternalServerError,
	}
}

func ErrInvalidRequest(str ...string) *Error {
	var s string
	if len(str) > 0 {
		s = str[0]
	} else {
		s = "empty request values or invalid request"
	}
	return &Error{
		Description: s,
		StatusCode:  http.StatusBadRequest,
	}
}

func ErrInvalidID() *Error {
	return &Error{
		Description: "Empty or invalid id",
		StatusCode:  http.StatusBadRequest,
	}
}
