package handlers

import (
	"net/http"
	"strconv"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
)

type DecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type AccountResponse struct {
	Message string                 `json:"message"`
	User    models.AccountSnapshot `json:"user"`
}

func (h *Handlers) GetPendingListings(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.ListingService.ListPending(r.Context(), caller, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) DecideListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req DecisionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	listing, err := h.ListingService.Decide(r.Context(), caller, listingID, models.ListingStatus(req.Status) == models.StatusApproved)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	includeInactive := false
	if raw := r.URL.Query().Get("include_inactive"); raw != "" {
		if includeInactive, err = strconv.ParseBool(raw); err != nil {
			h.writeError(w, r, apperrors.InvalidInput("Invalid include_inactive", err))
			return
		}
	}

	accounts, err := h.UserService.ListAccounts(r.Context(), caller, includeInactive, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, map[string]any{"users": accounts}, http.StatusOK)
}

func (h *Handlers) GetPendingUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accounts, err := h.UserService.ListPendingAccounts(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, map[string]any{"users": accounts}, http.StatusOK)
}

func (h *Handlers) ApproveUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.UserService.ApproveAccount(r.Context(), caller, accountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, AccountResponse{
		Message: "User " + account.Username + " has been approved",
		User:    account.Snapshot(),
	}, http.StatusOK)
}

func (h *Handlers) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.UserService.Deactivate(r.Context(), caller, accountID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "User has been deactivated"}, http.StatusOK)
}

func (h *Handlers) RejectUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.UserService.RejectPendingAccount(r.Context(), caller, accountID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "User registration has been rejected"}, http.StatusOK)
}

func (h *Handlers) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.UserService.GrantAdminRole(r.Context(), caller, accountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, AccountResponse{
		Message: "User " + account.Username + " is now an admin",
		User:    account.Snapshot(),
	}, http.StatusOK)
}

func (h *Handlers) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	stats, err := h.UserService.AdminStats(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, stats, http.StatusOK)
}
