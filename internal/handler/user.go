package handler

import (
	"net/http"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/handler/dto"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct{}

// NewUserHandler creates a new UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me handles GET /users/me.
// Returns the public representation of the caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(caller))
}
