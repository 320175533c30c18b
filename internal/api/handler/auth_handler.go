package handler

import (
	"context"
	"net/http"

	"attendance.service/internal/auth"
	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
)

// AccountService is the account use-case surface used by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, in core.RegisterInput) (*core.AuthResult, error)
	Login(ctx context.Context, in core.LoginInput) (*core.AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type AuthHandler struct {
	Accounts AccountService
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in core.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	res, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in core.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	res, err := h.Accounts.Login(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, r, model.ErrUnauthenticated)
		return
	}

	u, err := h.Accounts.Me(r.Context(), id.UserID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}
