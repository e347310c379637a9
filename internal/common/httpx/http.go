package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	"github.com/go-playground/validator/v10"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 1 << 20

// GetRequestData decodes a JSON request body into data and runs struct
// validation on it.
func GetRequestData(r *http.Request, data any) error {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil || r.Body == http.NoBody {
		log.Ctx(r.Context()).Error().Msg("Empty request body")
		return ErrUnableToParseReqData()
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(data); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("unable to decode request")
		return ErrUnableToParseReqData()
	}
	if err := V().Struct(data); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return ErrInvalidRequest("invalid value for " + ve[0].Field())
		}
		return ErrInvalidRequest()
	}
	return nil
}

type Response struct {
	StatusCode  int
	Location    string //in case of http.StatusCreated
	Response    any
	ContentType string
}

type RequestHandler func(r *http.Request) (*Response, error)

func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			if httperror, ok := err.(*Error); ok {
				httperror.Send(w)
			} else if appErr, ok := err.(apperrors.Error); ok {
				if appErr.StatusCode() == 0 || appErr.StatusCode() >= http.StatusInternalServerError {
					log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
				}
				SendError(w, appErr)
			} else {
				log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
				ErrApplicationError().Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		if rsp.ContentType == "application/json" {
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		} else {
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}

// SendJsonRsp writes rsp as JSON. A nil rsp with 204 writes no body.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, rsp any, location ...string) {
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}
	if rsp == nil || statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}
	body, err := json.Marshal(rsp)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to marshal response")
		ErrApplicationError().Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("unable to write response")
	}
}

type ResponseHandlerParam struct {
	Method  string
	Path    string
	Handler RequestHandler
}
