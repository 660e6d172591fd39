package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

type EventService interface {
	CreateEvent(ctx context.Context, admin domain.Principal, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, admin domain.Principal, id uint, patch domain.EventPatch) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Get the list of all events, ordered by start time.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Router       /events/ [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/ [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	id, respErr := getEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Admins only. event_type defaults to online, max_tickets_per_user to 1.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/create/ [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	principal, respErr := getPrincipalFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), principal, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Admins only. PUT and PATCH both merge the given fields into the event.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.UpdateEventRequest  true  "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/update/ [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	principal, respErr := getPrincipalFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := getEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), principal, id, req.ToPatch())
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, event)
}
