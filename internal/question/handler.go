package question

import (
	"context"
	"errors"
	"log"
	"net/http"

	"mocktest/internal/app/apiresp"
	"mocktest/internal/app/binding"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type questionService interface {
	PublicBank(ctx context.Context) ([]PublicQuestion, error)
	List(ctx context.Context) ([]Question, error)
	Get(ctx context.Context, id string) (*Question, error)
	Create(ctx context.Context, in CreateInput) (*Question, error)
	Update(ctx context.Context, in UpdateInput) (*Question, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, rows []ImportRow) (*ImportReport, error)
}

type Handler struct {
	svc questionService
}

type createQuestionRequest struct {
	QuestionText       string   `json:"questionText" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2"`
	QuestionTextHi     string   `json:"questionTextHi"`
	OptionsHi          []string `json:"optionsHi"`
	CorrectAnswer      string   `json:"correctAnswer" validate:"required"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex" validate:"omitempty,gte=0"`
}

type updateQuestionRequest struct {
	QuestionText       *string   `json:"questionText"`
	Options            *[]string `json:"options"`
	QuestionTextHi     *string   `json:"questionTextHi"`
	OptionsHi          *[]string `json:"optionsHi"`
	CorrectAnswer      *string   `json:"correctAnswer"`
	CorrectAnswerIndex *int      `json:"correctAnswerIndex" validate:"omitempty,gte=0"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.PublicBank(r.Context())
	if err != nil {
		log.Printf("list public questions err=%v", err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("list questions err=%v", err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := binding.JSON(r, &req); err != nil {
		apiresp.WriteBindError(w, r, err)
		return
	}

	q, err := h.svc.Create(r.Context(), CreateInput{
		QuestionText:       req.QuestionText,
		Options:            req.Options,
		QuestionTextHi:     req.QuestionTextHi,
		OptionsHi:          req.OptionsHi,
		CorrectAnswer:      req.CorrectAnswer,
		CorrectAnswerIndex: req.CorrectAnswerIndex,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusCreated, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateQuestionRequest
	if err := binding.JSON(r, &req); err != nil {
		apiresp.WriteBindError(w, r, err)
		return
	}

	q, err := h.svc.Update(r.Context(), UpdateInput{
		ID:                 chi.URLParam(r, "id"),
		QuestionText:       req.QuestionText,
		Options:            req.Options,
		QuestionTextHi:     req.QuestionTextHi,
		OptionsHi:          req.OptionsHi,
		CorrectAnswer:      req.CorrectAnswer,
		CorrectAnswerIndex: req.CorrectAnswerIndex,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, q)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	rows, err := ParseImportSheet(file)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.Import(r.Context(), rows)
	if err != nil {
		log.Printf("import questions created=%d err=%v", report.Created, err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, report)
}

func (h *Handler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="questions_template.xlsx"`)
	if err := WriteImportTemplate(w); err != nil {
		log.Printf("write question template err=%v", err)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrQuestionNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, "question not found")
	default:
		log.Printf("question request path=%s err=%v", r.URL.Path, err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}
