package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

// Err is the JSON body of every error response.
type Err struct {
	Err            error             `json:"-"`
	HTTPStatusCode int               `json:"-"`
	StatusText     string            `json:"status"`
	Kind           string            `json:"kind,omitempty"`
	ErrorText      string            `json:"error,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

// ErrBadRequest renders ozzo validation errors field by field.
func ErrBadRequest(err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		Kind:           domain.ErrorKind(err),
		ErrorText:      err.Error(),
	}
	if e.Kind == "" {
		e.Kind = "ValidationError"
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.Kind = "ValidationError"
		e.Fields = make(map[string]string, len(fieldErrs))
		for field, ferr := range fieldErrs {
			e.Fields[field] = ferr.Error()
		}
	}

	return e
}

func ErrNotFound(resource, field string, value any) *Err {
	err := fmt.Errorf("%s with %s %v %w", resource, field, value, domain.ErrNotFound)

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		Kind:           "NotFound",
		ErrorText:      err.Error(),
	}
}

// ErrUnknownReference is a 400 for a body field naming a record that does
// not exist, as opposed to a missing path resource.
func ErrUnknownReference(err error, field string, value any) *Err {
	msg := fmt.Sprintf("Invalid pk \"%v\" - object does not exist.", value)

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request.",
		Kind:           "NotFound",
		ErrorText:      msg,
		Fields:         map[string]string{field: msg},
	}
}

func ErrUnauthenticated(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthenticated.",
		Kind:           "Unauthenticated",
		ErrorText:      "Authentication credentials were not provided or are invalid.",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthenticated.",
		Kind:           "Unauthenticated",
		ErrorText:      "Incorrect username or password.",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		Kind:           "Forbidden",
		ErrorText:      "You do not have permission to perform this action.",
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		Kind:           "Conflict",
		ErrorText:      "The event is busy, please retry.",
	}
}

func ErrTooManyRequests(retryAfter int) *Err {
	return &Err{
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests.",
		Kind:           "RateLimited",
		ErrorText:      fmt.Sprintf("Rate limit exceeded, retry in %d seconds.", retryAfter),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      "Something went wrong.",
	}
}

// ErrFromDomain maps a service error onto its HTTP rendering. Errors outside
// the domain taxonomy become 500s.
func ErrFromDomain(err error) *Err {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &Err{
			Err:            err,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found.",
			Kind:           "NotFound",
			ErrorText:      "Not found.",
		}
	case errors.Is(err, domain.ErrValidation):
		return ErrBadRequest(err)
	case errors.Is(err, domain.ErrUnauthenticated):
		return ErrUnauthenticated(err)
	case errors.Is(err, domain.ErrForbidden):
		return ErrPermissionDenied(err)
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict(err)
	}

	var rejection *domain.BookingError
	if errors.As(err, &rejection) {
		return &Err{
			Err:            err,
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     "Bad request.",
			Kind:           domain.ErrorKind(rejection),
			ErrorText:      rejection.Message,
		}
	}

	return ErrInternalServerError(err)
}
