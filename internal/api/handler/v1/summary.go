package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/eventbooking-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/eventbooking-api/internal/domain"
)

type SummaryService interface {
	Summarize(ctx context.Context, eventID uint) (domain.EventSummary, error)
}

type SummaryHandler struct {
	svc  SummaryService
	feed *SummaryFeed
}

func NewSummaryHandler(svc SummaryService, feed *SummaryFeed) *SummaryHandler {
	return &SummaryHandler{
		svc:  svc,
		feed: feed,
	}
}

// HandleGetSummary godoc
// @Summary      Get an event summary
// @Description  Admins only. Totals over committed bookings.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.EventSummary
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/summary/ [get]
// @Security     BearerAuth
func (h *SummaryHandler) HandleGetSummary(ctx *gin.Context) {
	id, respErr := getEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Summarize(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("v1.HandleGetSummary -> h.svc.Summarize -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleSummaryFeed godoc
// @Summary      Live event summary
// @Description  Admins only. Upgrades to a websocket that receives the summary now and after every booking.
// @Tags         events
// @Param        eventID  path      int  true  "Event ID"
// @Success      101      {string}  string  "Switching Protocols"
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/summary/ws [get]
// @Security     BearerAuth
func (h *SummaryHandler) HandleSummaryFeed(ctx *gin.Context) {
	id, respErr := getEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Summarize(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(fmt.Errorf("v1.HandleSummaryFeed -> h.svc.Summarize -> %w", err)))
		return
	}

	h.feed.Serve(ctx.Writer, ctx.Request, summary)
}
