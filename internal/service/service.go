// Package service implements the recipe, collection, subscription and
// shopping list operations on top of the store.
package service

import (
	"fmt"

	"foodgram/internal/authz"
	"foodgram/internal/images"
	"foodgram/internal/store"
)

const (
	defaultRecipesLimit = 3
	defaultPageSize     = 6
	maxPageSize         = 100
)

// Actor identifies the caller. The zero value is an anonymous viewer.
type Actor struct {
	UserID uint
}

func Anonymous() Actor {
	return Actor{}
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

func (a Actor) require() error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// Options tunes listing defaults.
type Options struct {
	// RecipesLimit caps the recipe preview on author profiles when the
	// caller does not ask for a specific number.
	RecipesLimit int
	PageSize     int
}

type Service struct {
	store        *store.Store
	images       images.Store
	authz        *authz.Enforcer
	recipesLimit int
	pageSize     int
}

func New(st *store.Store, imageStore images.Store, enforcer *authz.Enforcer, opts Options) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if imageStore == nil {
		return nil, fmt.Errorf("image store is nil")
	}
	if enforcer == nil {
		return nil, fmt.Errorf("authorization enforcer is nil")
	}
	if opts.RecipesLimit <= 0 {
		opts.RecipesLimit = defaultRecipesLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	return &Service{
		store:        st,
		images:       imageStore,
		authz:        enforcer,
		recipesLimit: opts.RecipesLimit,
		pageSize:     opts.PageSize,
	}, nil
}

// PageRequest asks for a limit/offset slice of a listing.
type PageRequest struct {
	Limit  int
	Offset int
}

// Page is one slice of a listing plus the total number of matches.
type Page[T any] struct {
	Count   int64
	Limit   int
	Offset  int
	Results []T
}

func (s *Service) normalise(page PageRequest) PageRequest {
	if page.Limit <= 0 {
		page.Limit = s.pageSize
	}
	if page.Limit > maxPageSize {
		page.Limit = maxPageSize
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}

func (s *Service) previewLimit(requested int) int {
	if requested < 0 {
		return s.recipesLimit
	}
	return requested
}
