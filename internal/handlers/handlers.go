// Package handlers exposes the recipe service over a JSON HTTP API.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	applog "foodgram/internal/log"
	"foodgram/internal/service"
)

const maxBodyBytes = 16 << 20

// Pinger reports whether the backing database is reachable.
type Pinger func(ctx context.Context) error

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	service  *service.Service
	sessions *scs.SessionManager
	ping     Pinger
}

func New(svc *service.Service, sessions *scs.SessionManager, ping Pinger) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("service is nil")
	}
	if sessions == nil {
		return nil, errors.New("session manager is nil")
	}
	return &Handler{service: svc, sessions: sessions, ping: ping}, nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type validationResponse struct {
	Errors map[string][]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: verr.Fields})
	case errors.Is(err, service.ErrDuplicateAssociation):
		writeJSONError(w, http.StatusBadRequest, "duplicate", err.Error())
	case errors.Is(err, service.ErrSelfReference):
		writeJSONError(w, http.StatusBadRequest, "self_reference", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSONError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, "not_authenticated", err.Error())
	default:
		applog.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeJSON reads the request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		applog.Debug(r.Context(), "failed to decode request body", "error", err)
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Errors: map[string][]string{"non_field_errors": {"Malformed JSON body."}},
		})
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. Anything that is not a positive
// integer cannot name a row and is answered with 404.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeJSONError(w, http.StatusNotFound, "not_found", "not found")
		return 0, false
	}
	return uint(id), true
}

func queryInt(values url.Values, key string, def int) int {
	raw := values.Get(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func queryFlag(values url.Values, key string) bool {
	switch values.Get(key) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}

func pageRequest(r *http.Request) service.PageRequest {
	query := r.URL.Query()
	return service.PageRequest{
		Limit:  queryInt(query, "limit", 0),
		Offset: queryInt(query, "offset", 0),
	}
}

// pageResponse is the limit/offset envelope returned by list endpoints.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T any](r *http.Request, page service.Page[T]) pageResponse[T] {
	resp := pageResponse[T]{Count: page.Count, Results: page.Results}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if int64(page.Offset+page.Limit) < page.Count {
		next := pageLink(r, page.Limit, page.Offset+page.Limit)
		resp.Next = &next
	}
	if page.Offset > 0 {
		previous := pageLink(r, page.Limit, max(page.Offset-page.Limit, 0))
		resp.Previous = &previous
	}
	return resp
}

func pageLink(r *http.Request, limit, offset int) string {
	link := *r.URL
	query := link.Query()
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	} else {
		query.Del("offset")
	}
	link.RawQuery = query.Encode()
	return link.RequestURI()
}
