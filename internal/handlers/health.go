package handlers

import (
	"errors"
	"net/http"
	"time"

	applog "foodgram/internal/log"
)

var errNoDatabase = errors.New("database not configured")

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a readiness handler suitable for infrastructure probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{Status: "ok", Database: "ok", Time: time.Now().UTC()}
	status := http.StatusOK

	err := errNoDatabase
	if h.ping != nil {
		err = h.ping(r.Context())
	}
	if err != nil {
		applog.Error(r.Context(), "health check database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
