package handlers

import (
	"net/http"
	"strconv"

	applog "foodgram/internal/log"
	"foodgram/internal/service"
)

const shoppingListFilename = "shopping_list.txt"

func recipeFilter(r *http.Request) service.RecipeFilter {
	query := r.URL.Query()
	filter := service.RecipeFilter{
		Tags:             query["tags"],
		IsFavorited:      queryFlag(query, "is_favorited"),
		IsInShoppingCart: queryFlag(query, "is_in_shopping_cart"),
	}
	if author, err := strconv.ParseUint(query.Get("author"), 10, 64); err == nil {
		filter.AuthorID = uint(author)
	}
	return filter
}

func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	filter := recipeFilter(r)
	applog.Debug(r.Context(), "listing recipes", "tags", filter.Tags, "author", filter.AuthorID)
	page, err := h.service.ListRecipes(r.Context(), h.actor(r), filter, pageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(r, page))
}

func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	recipe, err := h.service.ViewRecipe(r.Context(), h.actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in service.RecipeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	recipe, err := h.service.CreateRecipe(r.Context(), h.actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// UpdateRecipe serves both PUT and PATCH as a full replace.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.RecipeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	recipe, err := h.service.ReplaceRecipe(r.Context(), h.actor(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRecipe(r.Context(), h.actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) collectionAdd(collection func() *service.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		summary, err := collection().Add(r.Context(), h.actor(r), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, summary)
	}
}

func (h *Handler) collectionRemove(collection func() *service.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := collection().Remove(r.Context(), h.actor(r), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.collectionAdd(h.service.Favorites)(w, r)
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.collectionRemove(h.service.Favorites)(w, r)
}

func (h *Handler) AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.collectionAdd(h.service.ShoppingCart)(w, r)
}

func (h *Handler) RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.collectionRemove(h.service.ShoppingCart)(w, r)
}

// DownloadShoppingCart returns the aggregated shopping list as a text attachment.
func (h *Handler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.BuildShoppingList(r.Context(), h.actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(service.RenderShoppingList(lines))); err != nil {
		applog.Error(r.Context(), "failed to write shopping list", "error", err)
	}
}
