package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"userauth/internal/auth"
	"userauth/internal/metrics"
	"userauth/internal/user"
)

type UserStore interface {
	Create(ctx context.Context, in user.CreateInput) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Recorder interface {
	UserCreated()
	Login(result string)
}

type UserHandler struct {
	Users   UserStore
	Auth    Authenticator
	Metrics Recorder
	Log     *slog.Logger
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Create handles POST /users/created. The response carries the stored hash
// in "password".
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	u, err := h.Users.Create(r.Context(), user.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *user.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		h.logger().ErrorContext(r.Context(), "create user failed", slog.Any("error", err))
		serverError(w)
		return
	}

	if h.Metrics != nil {
		h.Metrics.UserCreated()
	}
	h.logger().InfoContext(r.Context(), "user created", slog.String("user_id", u.ID))
	writeJSON(w, http.StatusCreated, u)
}

// Login handles POST /users.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.record(metrics.LoginInvalid)
			Unauthorized(w, r)
			return
		}
		h.record(metrics.LoginError)
		h.logger().ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		serverError(w)
		return
	}

	h.record(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me handles GET /users/me behind auth.RequireAuth.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.Authenticated(r.Context())
	if !ok {
		Unauthorized(w, r)
		return
	}

	u, err := h.Users.FindByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			Unauthorized(w, r)
			return
		}
		h.logger().ErrorContext(r.Context(), "load user failed", slog.Any("error", err))
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, profileDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

func (h *UserHandler) record(result string) {
	if h.Metrics != nil {
		h.Metrics.Login(result)
	}
}

func (h *UserHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}
