package handler

import (
	"strconv"
	"time"

	"asset-marketplace/internal/adapter/http/dto"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/pkg/apperror"
	"asset-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventsHandler serves the public event feed.
type EventsHandler struct {
	journal       ports.EventJournal
	priceDecimals int32
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(journal ports.EventJournal, priceDecimals int32) *EventsHandler {
	return &EventsHandler{journal: journal, priceDecimals: priceDecimals}
}

// ListRecent handles GET /api/v1/events.
func (h *EventsHandler) ListRecent(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, apperror.Validation("invalid limit"))
			return
		}
		if parsed > maxEventLimit {
			parsed = maxEventLimit
		}
		limit = parsed
	}

	events, err := h.journal.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.EventResponse{
			ID:      e.ID.String(),
			Type:    string(e.Type),
			Asset:   e.Asset,
			TokenID: e.TokenID,
			Actor:   e.Actor.String(),
			Amount:  dto.FormatPrice(e.Amount, h.priceDecimals),
			At:      e.At.UTC().Format(time.RFC3339),
		})
	}

	response.OK(c, dto.EventListResponse{Items: items})
}
