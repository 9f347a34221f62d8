package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/shared"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. These stay
// outside the tenancy gate on purpose: login and password recovery must work
// for users whose subscription has lapsed.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/token", h.handleIdentityToken)
	r.Post("/logout", h.handleLogout)
	r.Post("/password-reset/request", h.handleResetRequest)
	r.Post("/password-reset/confirm", h.handleResetConfirm)
	r.Post("/password", h.handleChangePassword)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type identityTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type resetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type userResponse struct {
	ID             int64        `json:"id"`
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	Role           tenancy.Role `json:"role"`
	OrganizationID *int64       `json:"organization_id,omitempty"`
}

func toUserResponse(user *User) userResponse {
	return userResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.AuthenticatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.finishLogin(w, r, user)
}

func (h *Handler) handleIdentityToken(w http.ResponseWriter, r *http.Request) {
	var req identityTokenRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.AuthenticateIdentityToken(r.Context(), req.Token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.finishLogin(w, r, user)
}

func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, user *User) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if err := h.service.EstablishSession(r.Context(), sess, user, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Error("establish session", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("request password reset", slog.Any("error", err))
	}
	// Always accepted: the response must not reveal whether the account exists.
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

func (h *Handler) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.UserByID(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return httpx.ErrValidation
	}
	if err := h.validate.Struct(target); err != nil {
		return httpx.ErrValidation
	}
	return nil
}
