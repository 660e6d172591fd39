package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

type BookingService interface {
	RequestBooking(ctx context.Context, user domain.Principal, eventID uint, quantity int) (domain.TicketGrant, error)
	ListTickets(ctx context.Context, user domain.Principal) ([]domain.TicketGrant, error)
}

type TicketHandler struct {
	svc BookingService
}

func NewTicketHandler(svc BookingService) *TicketHandler {
	return &TicketHandler{
		svc: svc,
	}
}

// HandleCreateTicket godoc
// @Summary      Book tickets
// @Description  Books quantity seats (default 1) of an event for the current user.
// @Description  Rejections are 400s carrying a kind: NotFound, BookingWindowClosed, PerRequestLimitExceeded, PerUserLimitExceeded or SoldOut.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTicketRequest  true  "request body"
// @Success      201      {object}  domain.TicketGrant
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/tickets/create/ [post]
// @Security     BearerAuth
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	principal, respErr := getPrincipalFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	grant, err := h.svc.RequestBooking(ctx.Request.Context(), principal, req.Event, req.QuantityOrDefault())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateTicket -> h.svc.RequestBooking -> %w", err)
		if errors.Is(err, domain.ErrNotFound) {
			response.RenderErr(ctx, response.ErrUnknownReference(err, "event", req.Event))
			return
		}

		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, grant)
}

// HandleListTickets godoc
// @Summary      List my tickets
// @Description  Every grant of the current user with its event, newest first.
// @Tags         tickets
// @Produce      json
// @Success      200  {array}   domain.TicketGrant
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/tickets/ [get]
// @Security     BearerAuth
func (h *TicketHandler) HandleListTickets(ctx *gin.Context) {
	principal, respErr := getPrincipalFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	grants, err := h.svc.ListTickets(ctx.Request.Context(), principal)
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.svc.ListTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, grants)
}
