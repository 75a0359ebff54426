package service

import (
	"context"
	"errors"
	"fmt"

	applog "foodgram/internal/log"
	"foodgram/internal/metrics"
	"foodgram/internal/store"
)

type collectionKind struct {
	name  string
	label string
	pick  func(*store.Repositories) store.PairRepository
}

var (
	favoritesKind = collectionKind{
		name:  "favorite",
		label: "favorites",
		pick:  func(r *store.Repositories) store.PairRepository { return r.Favorites },
	}
	shoppingCartKind = collectionKind{
		name:  "shopping_cart",
		label: "the shopping cart",
		pick:  func(r *store.Repositories) store.PairRepository { return r.ShoppingCart },
	}
)

// Collection is a per-user set of recipes such as favorites or the cart.
type Collection struct {
	svc  *Service
	kind collectionKind
}

func (s *Service) Favorites() *Collection {
	return &Collection{svc: s, kind: favoritesKind}
}

func (s *Service) ShoppingCart() *Collection {
	return &Collection{svc: s, kind: shoppingCartKind}
}

// Add puts the recipe into the actor's collection and returns its summary.
// A pair that already exists, including one inserted by a concurrent
// request, yields ErrDuplicateAssociation.
func (c *Collection) Add(ctx context.Context, actor Actor, recipeID uint) (RecipeSummary, error) {
	if err := actor.require(); err != nil {
		return RecipeSummary{}, err
	}

	var summary RecipeSummary
	err := c.svc.store.Tx(ctx, func(tx *store.Repositories) error {
		recipe, err := tx.Recipes.Find(recipeID)
		if err != nil {
			return translate(err, "recipe")
		}
		pairs := c.kind.pick(tx)
		exists, err := pairs.Exists(actor.UserID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			return c.duplicate(recipeID)
		}
		if err := pairs.Add(actor.UserID, recipeID); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return c.duplicate(recipeID)
			}
			return err
		}
		summary = toSummary(recipe)
		return nil
	})
	if err != nil {
		return RecipeSummary{}, err
	}

	metrics.RecordEvent(c.kind.name + "_added")
	applog.Debug(ctx, "recipe added to collection", "collection", c.kind.name, "recipeID", recipeID, "userID", actor.UserID)
	return summary, nil
}

// Remove takes the recipe out of the actor's collection.
func (c *Collection) Remove(ctx context.Context, actor Actor, recipeID uint) error {
	if err := actor.require(); err != nil {
		return err
	}

	err := c.svc.store.Tx(ctx, func(tx *store.Repositories) error {
		return c.kind.pick(tx).Remove(actor.UserID, recipeID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("recipe %d is not in %s: %w", recipeID, c.kind.label, ErrNotFound)
	}
	if err != nil {
		return err
	}

	metrics.RecordEvent(c.kind.name + "_removed")
	return nil
}

func (c *Collection) duplicate(recipeID uint) error {
	return fmt.Errorf("recipe %d is already in %s: %w", recipeID, c.kind.label, ErrDuplicateAssociation)
}
