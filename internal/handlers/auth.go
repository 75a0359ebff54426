package handlers

import (
	"net/http"

	applog "foodgram/internal/log"
	"foodgram/internal/service"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials and binds the session to the user.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Errors: map[string][]string{"non_field_errors": {"Email and password are required."}},
		})
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		applog.Debug(r.Context(), "authentication failed", "error", err)
		writeError(w, r, err)
		return
	}

	if err := h.establishSession(r, user); err != nil {
		writeError(w, r, err)
		return
	}

	applog.Debug(r.Context(), "authentication succeeded", "userID", user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) establishSession(r *http.Request, user service.UserView) error {
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	h.sessions.Put(r.Context(), sessionAuthenticatedKey, true)
	h.sessions.Put(r.Context(), sessionUserIDKey, int(user.ID))
	h.sessions.Put(r.Context(), sessionUserEmailKey, user.Email)
	return nil
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		applog.Error(r.Context(), "failed to destroy session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor returns the session's user, or an anonymous actor.
func (h *Handler) actor(r *http.Request) service.Actor {
	if !h.sessions.GetBool(r.Context(), sessionAuthenticatedKey) {
		return service.Anonymous()
	}
	id := h.sessions.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return service.Anonymous()
	}
	return service.Actor{UserID: uint(id)}
}

// RequireAuthentication answers 401 before next runs when there is no
// authenticated session.
func (h *Handler) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.actor(r).Authenticated() {
			writeError(w, r, service.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
