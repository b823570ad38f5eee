package report

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"mocktest/internal/app/apiresp"
	"mocktest/internal/exam"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportService interface {
	Stats(ctx context.Context) (*Stats, error)
	ListResults(ctx context.Context, rollNumber string) ([]exam.Result, error)
	ExportResultsExcel(ctx context.Context, rollNumber string) ([]byte, error)
}

type Handler struct {
	svc reportService
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Printf("admin stats err=%v", err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, stats)
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListResults(r.Context(), r.URL.Query().Get("rollNumber"))
	if err != nil {
		log.Printf("admin results err=%v", err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) ExportResults(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportResultsExcel(r.Context(), r.URL.Query().Get("rollNumber"))
	if err != nil {
		log.Printf("export results err=%v", err)
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	name := "results_" + h.now().UTC().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
