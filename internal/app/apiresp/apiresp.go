package apiresp

import (
	"encoding/json"
	"errors"
	"net/http"

	"mocktest/internal/app/binding"

	"github.com/go-chi/chi/v5/middleware"
)

type ErrorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
}

type Envelope struct {
	OK    bool          `json:"ok"`
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
	Meta  Meta          `json:"meta"`
}

func WriteOK(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, status, Envelope{OK: true, Data: data, Meta: metaFor(r)})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	write(w, status, Envelope{
		OK:    false,
		Error: &ErrorPayload{Code: codeFromStatus(status), Message: msg},
		Meta:  metaFor(r),
	})
}

// WriteBindError renders a binding failure as 400, keeping per-field details.
func WriteBindError(w http.ResponseWriter, r *http.Request, err error) {
	var berr *binding.Error
	if !errors.As(err, &berr) {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	write(w, http.StatusBadRequest, Envelope{
		OK:    false,
		Error: &ErrorPayload{Code: codeFromStatus(http.StatusBadRequest), Message: berr.Message, Fields: berr.Fields},
		Meta:  metaFor(r),
	})
}

func metaFor(r *http.Request) Meta {
	if r == nil {
		return Meta{}
	}
	return Meta{RequestID: middleware.GetReqID(r.Context())}
}

func write(w http.ResponseWriter, status int, res Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		if status >= 200 && status < 300 {
			return ""
		}
		return "error"
	}
}
