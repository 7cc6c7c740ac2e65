package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errUnauthorized = errors.New("missing or invalid token")
	errInternal     = errors.New("internal server error")
	errRateLimited  = errors.New("too many requests, try again later")
)

// Err is the JSON body of every failed request.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status_text"`
	ErrorText      string `json:"error_text"`

	cause error
}

func (e *Err) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}

	return e.ErrorText
}

func (e *Err) Unwrap() error {
	return e.cause
}

func newErr(status int, err error) *Err {
	return &Err{
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      err.Error(),
		cause:          err,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrUnauthorized(err error) *Err {
	if err == nil {
		err = errUnauthorized
	}

	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s %v not found", resource, key, value))
}

func ErrTooManyRequests() *Err {
	return newErr(http.StatusTooManyRequests, errRateLimited)
}

// ErrInternalServerError keeps err for the log line but never shows it to the
// client.
func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, err)
	e.ErrorText = errInternal.Error()

	return e
}

// RenderErr writes e as JSON and aborts the request. Server errors are
// logged with the request id.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.cause),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}
