package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes are reachable without a session.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signUp)
	r.Post("/signin", h.signIn)
	r.Post("/password-reset", h.sendPasswordReset)
	r.Post("/password-reset/confirm", h.resetPassword)
	r.Post("/verify-email/confirm", h.verifyEmail)
}

// PrivateRoutes must be mounted behind authn.Middleware.
func (h *Handler) PrivateRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Post("/reauthenticate", h.reauthenticate)
	r.Post("/password", h.changePassword)
	r.Post("/verify-email", h.sendEmailVerification)
	r.With(authn.RequireRole(identity.RoleManager)).Post("/users", h.createUser)
}

type userResponse struct {
	ID            uuid.UUID     `json:"id"`
	Email         string        `json:"email"`
	Name          string        `json:"name"`
	Role          identity.Role `json:"role"`
	EmailVerified bool          `json:"email_verified"`
	CreatedAt     time.Time     `json:"created_at"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserResponse(s.User)}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.SignUp(r.Context(), auth.SignUpParams{Email: req.Email, Name: req.Name, Password: req.Password})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSessionResponse(s))
}

type createUserRequest struct {
	signUpRequest
	Role identity.Role `json:"role"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.CreateUser(r.Context(), authn.Caller(r), auth.CreateUserParams{
		SignUpParams: auth.SignUpParams{Email: req.Email, Name: req.Name, Password: req.Password},
		Role:         req.Role,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toUserResponse(u))
}

type signInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSessionResponse(s))
}

type passwordRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *Handler) reauthenticate(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Reauthenticate(r.Context(), authn.Caller(r), req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), authn.Caller(r), req.Password); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

// sendPasswordReset answers 202 whether or not the email is registered.
func (h *Handler) sendPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.SendPasswordReset(r.Context(), req.Email); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type resetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendEmailVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendEmailVerification(r.Context(), authn.Caller(r)); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type tokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), req.Token); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Role            identity.Role `json:"role"`
	AuthenticatedAt time.Time     `json:"authenticated_at"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	caller := authn.Caller(r)

	p, err := h.svc.Profile(r.Context(), caller.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, meResponse{ID: p.ID, Name: p.Name, Role: p.Role, AuthenticatedAt: caller.AuthenticatedAt})
}
