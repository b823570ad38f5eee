package exam

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mocktest/internal/app/apiresp"
	"mocktest/internal/app/binding"
	"mocktest/internal/auth"

	"github.com/go-chi/chi/v5"
)

type examService interface {
	Submit(ctx context.Context, studentID string, sub Submission) (*SubmitResult, error)
	ReviewLatestForStudent(ctx context.Context, studentID string) (*Review, error)
	ReviewByRollNumber(ctx context.Context, rollNumber string) (*Review, error)
	ListForStudent(ctx context.Context, studentID string) ([]Result, error)
}

type Handler struct {
	svc examService
}

type submitRequest struct {
	Answers json.RawMessage `json:"answers"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req submitRequest
	if err := binding.JSON(r, &req); err != nil {
		apiresp.WriteBindError(w, r, err)
		return
	}
	sub, err := DecodeSubmission(req.Answers)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid answers format")
		return
	}

	res, err := h.svc.Submit(r.Context(), user.ID, sub)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoQuestions):
			apiresp.WriteError(w, r, http.StatusBadRequest, "no questions available")
		case errors.Is(err, ErrAlreadySubmitted):
			apiresp.WriteError(w, r, http.StatusConflict, "test already submitted")
		case errors.Is(err, auth.ErrUserNotFound):
			apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
		default:
			log.Printf("submit student=%s err=%v", user.ID, err)
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, res)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	review, err := h.svc.ReviewLatestForStudent(r.Context(), user.ID)
	if err != nil {
		h.writeReviewError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, review)
}

func (h *Handler) ReviewByRollNumber(w http.ResponseWriter, r *http.Request) {
	review, err := h.svc.ReviewByRollNumber(r.Context(), chi.URLParam(r, "rollNumber"))
	if err != nil {
		h.writeReviewError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, review)
}

func (h *Handler) MyResults(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		apiresp.WriteError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.svc.ListForStudent(r.Context(), user.ID)
	if err != nil {
		log.Printf("list results student=%s err=%v", user.ID, err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) writeReviewError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrResultNotFound) {
		apiresp.WriteError(w, r, http.StatusNotFound, "no test result found")
		return
	}
	log.Printf("review path=%s err=%v", r.URL.Path, err)
	apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
}
