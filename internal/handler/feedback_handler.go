package handlers

import (
	"net/http"

	"agenthub/internal/models"
)

type RatingRequest struct {
	Rating int `json:"rating"`
}

type ReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text" validate:"required"`
}

type HelpfulResponse struct {
	Message      string `json:"message"`
	HelpfulCount int    `json:"helpful_count"`
}

func (h *Handlers) RateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req RatingRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.FeedbackService.Rate(r.Context(), caller, listingID, req.Rating)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, summary, http.StatusOK)
}

func (h *Handlers) GetRatingStats(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.FeedbackService.RatingStats(r.Context(), listingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, stats, http.StatusOK)
}

func (h *Handlers) ReviewListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req ReviewRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	review, err := h.FeedbackService.Review(r.Context(), caller, listingID, req.Rating, req.ReviewText)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, review, http.StatusCreated)
}

func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.FeedbackService.DeleteOwnReview(r.Context(), caller, listingID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Review deleted successfully"}, http.StatusOK)
}

func (h *Handlers) GetReviews(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.FeedbackService.ListReviews(r.Context(), listingID, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []models.ReviewDetail{}
	}

	writeSuccess(w, map[string]any{"reviews": reviews}, http.StatusOK)
}

func (h *Handlers) MarkReviewHelpful(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.FeedbackService.MarkHelpful(r.Context(), caller, listingID, reviewID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := "Review marked as helpful"
	if !result.Counted {
		msg = "Already marked as helpful"
	}
	writeSuccess(w, HelpfulResponse{Message: msg, HelpfulCount: result.HelpfulCount}, http.StatusOK)
}
