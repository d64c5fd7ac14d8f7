package handlers

import (
	"net/http"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	profile, err := h.AuthService.GetProfile(r.Context(), caller, accountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

func (h *Handlers) GetUserListings(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	listings, err := h.ListingService.ListForAccount(r.Context(), caller, accountID, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}

func (h *Handlers) GetMyStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	stats, err := h.EngagementService.AccountStats(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, stats, http.StatusOK)
}
