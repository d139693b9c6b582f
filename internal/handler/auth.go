package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/castpro/castpro/internal/handler/dto"
	"github.com/castpro/castpro/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.handleRegisterError(w, req.Email, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"email", user.Email,
	)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login handles POST /auth/login with form-encoded credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		h.handleLoginError(w, username, err)
		return
	}

	h.logger.Info("user_logged_in", "email", username)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleRegisterError maps registration errors to HTTP responses.
func (h *AuthHandler) handleRegisterError(w http.ResponseWriter, email string, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		h.logger.Warn("registration failed", "reason", "email_exists", "email", email)
		writeError(w, http.StatusBadRequest, "A user with this email already exists.")
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrFullNameRequired),
		errors.Is(err, service.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("registration failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// handleLoginError maps login errors to HTTP responses.
// Unknown email and wrong password share the same response.
func (h *AuthHandler) handleLoginError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.logger.Warn("login failed", "reason", "invalid_credentials", "email", username)
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, service.ErrInactiveUser):
		h.logger.Warn("login failed", "reason", "inactive_user", "email", username)
		writeError(w, http.StatusBadRequest, "Inactive user")
	default:
		h.logger.Error("login failed", "email", username, "error", err)
		writeError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
