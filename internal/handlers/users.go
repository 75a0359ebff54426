package handlers

import (
	"net/http"

	applog "foodgram/internal/log"
	"foodgram/internal/service"
)

// Signup registers a new account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.service.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListUsers(r.Context(), h.actor(r), pageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(r, page))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.User(r.Context(), h.actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := h.actor(r)
	user, err := h.service.User(r.Context(), actor, actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteMe removes the account and ends the session.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context(), h.actor(r)); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.sessions.Destroy(r.Context()); err != nil {
		applog.Error(r.Context(), "failed to destroy session after account deletion", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func recipesLimit(r *http.Request) int {
	return queryInt(r.URL.Query(), "recipes_limit", -1)
}

// Subscriptions lists the authors the user follows.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListFollows(r.Context(), h.actor(r), pageRequest(r), recipesLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(r, page))
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	profile, err := h.service.Subscribe(r.Context(), h.actor(r), id, recipesLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Unsubscribe(r.Context(), h.actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
