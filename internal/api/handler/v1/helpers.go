package v1

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/api/middleware"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

func getPrincipalFromContext(ctx *gin.Context) (domain.Principal, *response.Err) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return domain.Principal{}, response.ErrUnauthenticated(domain.ErrUnauthenticated)
	}

	return principal, nil
}

func getEventID(ctx *gin.Context) (uint, *response.Err) {
	raw := ctx.Param("eventID")
	if err := validation.Validate(raw, validation.Required, is.Digit); err != nil {
		return 0, response.ErrBadRequest(validation.Errors{"eventID": err})
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid event ID %q", raw))
	}

	return uint(id), nil
}
