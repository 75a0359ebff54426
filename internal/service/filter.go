package service

import "foodgram/internal/store"

// RecipeFilter holds the listing filters a client may send.
type RecipeFilter struct {
	// Tags are matched as case-insensitive substrings of tag slugs and
	// OR'ed together.
	Tags             []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}

// query builds the store query for viewer. The membership filters only
// apply to an authenticated viewer and are dropped otherwise.
func (f RecipeFilter) query(viewer Actor) store.RecipeQuery {
	q := store.RecipeQuery{
		TagSlugs: f.Tags,
		AuthorID: f.AuthorID,
	}
	if viewer.Authenticated() {
		if f.IsFavorited {
			q.FavoritedBy = viewer.UserID
		}
		if f.IsInShoppingCart {
			q.InCartOf = viewer.UserID
		}
	}
	return q
}
