// Package store owns every SQL statement the application runs. Callers get a
// Repositories value bound either to a plain session or to one transaction.
package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

const tagCacheSize = 256

// Store wraps the database handle and the process-local tag cache.
type Store struct {
	db   *gorm.DB
	tags *lru.Cache
}

// New builds a Store over an already migrated database.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	cache, err := lru.New(tagCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create tag cache: %w", err)
	}
	return &Store{db: db, tags: cache}, nil
}

// Repositories groups the per-table repositories sharing one session.
type Repositories struct {
	Users         UserRepository
	Catalog       CatalogRepository
	Recipes       RecipeRepository
	Favorites     PairRepository
	ShoppingCart  PairRepository
	Subscriptions SubscriptionRepository
	Shopping      ShoppingRepository
}

func (s *Store) repositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         UserRepository{db: db},
		Catalog:       CatalogRepository{db: db, tags: s.tags},
		Recipes:       RecipeRepository{db: db},
		Favorites:     PairRepository{db: db, table: favoritesTable},
		ShoppingCart:  PairRepository{db: db, table: shoppingCartTable},
		Subscriptions: SubscriptionRepository{PairRepository{db: db, table: subscriptionsTable}},
		Shopping:      ShoppingRepository{db: db},
	}
}

// Read returns repositories outside of any explicit transaction.
func (s *Store) Read(ctx context.Context) *Repositories {
	return s.repositories(s.db.WithContext(ctx))
}

// Tx runs fn inside one transaction. Returning an error rolls back every
// write fn made.
func (s *Store) Tx(ctx context.Context, fn func(*Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.repositories(tx))
	})
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}
