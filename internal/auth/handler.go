package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"mocktest/internal/app/apiresp"
	"mocktest/internal/app/binding"
)

type contextKey string

const userContextKey contextKey = "auth_user"

type authService interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, rollNumber, password string) (*LoginResult, error)
	Authenticate(token string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

type Handler struct {
	svc authService
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	RollNumber string `json:"rollNumber" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,min=6,max=128"`
	Role       string `json:"role" validate:"omitempty,max=16"`
}

type loginRequest struct {
	RollNumber string `json:"rollNumber" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := binding.JSON(r, &req); err != nil {
		apiresp.WriteBindError(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), RegisterInput{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		Password:   req.Password,
		Role:       req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDuplicateUser):
			apiresp.WriteError(w, r, http.StatusBadRequest, "user already exists")
		case errors.Is(err, ErrAdminSignupDisabled):
			apiresp.WriteError(w, r, http.StatusForbidden, err.Error())
		default:
			log.Printf("register roll=%s err=%v", req.RollNumber, err)
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := binding.JSON(r, &req); err != nil {
		apiresp.WriteBindError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.RollNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			apiresp.WriteError(w, r, http.StatusBadRequest, "invalid credentials")
		case errors.Is(err, ErrRateLimited):
			apiresp.WriteError(w, r, http.StatusTooManyRequests, "too many attempts, try again later")
		default:
			log.Printf("login roll=%s err=%v", req.RollNumber, err)
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.svc.GetUser(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, user)
}

func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.svc.Authenticate(bearerToken(r))
		if err != nil {
			msg := "unauthorized"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			apiresp.WriteError(w, r, http.StatusUnauthorized, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

func (h *Handler) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, exists := allowed[user.Role]; !exists {
				apiresp.WriteError(w, r, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CurrentUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok && u != nil
}

// ContextWithUser injects an authenticated user into context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
