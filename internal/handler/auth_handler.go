package handlers

import (
	"net/http"

	"agenthub/internal/models"
	"agenthub/internal/service"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterResponse struct {
	Message string                 `json:"message"`
	User    models.AccountSnapshot `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
}

type LoginResponse struct {
	Message          string `json:"message"`
	ExpiresIn        int    `json:"expires_in"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
	OTPCode          string `json:"otp_code,omitempty"`
}

type VerifyOTPRequest struct {
	Username string `json:"username" validate:"required"`
	OTPCode  string `json:"otp_code" validate:"required"`
}

type TokenResponse struct {
	AccessToken string                 `json:"access_token"`
	TokenType   string                 `json:"token_type"`
	ExpiresIn   int                    `json:"expires_in"`
	User        models.AccountSnapshot `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func tokenResponse(session *service.AuthSession) TokenResponse {
	return TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresIn:   int(session.ExpiresIn.Seconds()),
		User:        session.Account,
	}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, RegisterResponse{
		Message: "Registration successful. Please wait for admin approval.",
		User:    account.Snapshot(),
	}, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	challenge, err := h.AuthService.InitiateLogin(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, LoginResponse{
		Message:          "OTP sent to your email",
		ExpiresIn:        int(challenge.ExpiresIn.Seconds()),
		ExpiresInMinutes: int(challenge.ExpiresIn.Minutes()),
		OTPCode:          challenge.Code,
	}, http.StatusOK)
}

func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.AuthService.VerifyOTP(r.Context(), req.Username, req.OTPCode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, tokenResponse(session), http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	profile, err := h.AuthService.GetProfile(r.Context(), caller, caller.AccountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), caller.AccountID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Password changed successfully"}, http.StatusOK)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	session, err := h.AuthService.RefreshToken(r.Context(), caller)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, tokenResponse(session), http.StatusOK)
}
