package handlers

import (
	"math"
	"net/http"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
)

type ClickRequest struct {
	ClickType string  `json:"click_type" validate:"required"`
	Referrer  *string `json:"referrer"`
}

// SessionRequest accepts fractional seconds; they are rounded to whole seconds.
type SessionRequest struct {
	DurationSeconds *float64 `json:"duration_seconds"`
}

func (h *Handlers) RecordClick(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req ClickRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	click, err := h.EngagementService.RecordClick(r.Context(), caller, listingID, models.ClickKind(req.ClickType), req.Referrer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, click, http.StatusCreated)
}

func (h *Handlers) RecordSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req SessionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.DurationSeconds == nil {
		h.writeError(w, r, apperrors.InvalidInput("duration_seconds is required", nil))
		return
	}

	if *req.DurationSeconds < 0 {
		h.writeError(w, r, apperrors.ErrNegativeDuration)
		return
	}

	session, err := h.EngagementService.RecordSession(r.Context(), caller, listingID, int(math.Round(*req.DurationSeconds)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, session, http.StatusCreated)
}

func (h *Handlers) GetListingEngagement(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.EngagementService.ListingEngagement(r.Context(), caller, listingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, stats, http.StatusOK)
}
