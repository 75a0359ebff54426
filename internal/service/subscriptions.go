package service

import (
	"context"
	"errors"
	"fmt"

	applog "foodgram/internal/log"
	"foodgram/internal/metrics"
	"foodgram/internal/store"
	"foodgram/models"
)

// Subscribe makes actor follow authorID and returns the author's profile
// with up to recipesLimit recipes. A negative recipesLimit uses the
// configured default.
func (s *Service) Subscribe(ctx context.Context, actor Actor, authorID uint, recipesLimit int) (AuthorProfile, error) {
	if err := actor.require(); err != nil {
		return AuthorProfile{}, err
	}
	if actor.UserID == authorID {
		return AuthorProfile{}, ErrSelfReference
	}

	var author models.User
	err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		var err error
		author, err = tx.Users.ByID(authorID)
		if err != nil {
			return translate(err, "author")
		}
		exists, err := tx.Subscriptions.Exists(actor.UserID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("already subscribed to %s: %w", author.Username, ErrDuplicateAssociation)
		}
		if err := tx.Subscriptions.Add(actor.UserID, authorID); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("already subscribed to %s: %w", author.Username, ErrDuplicateAssociation)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return AuthorProfile{}, err
	}

	metrics.RecordEvent("subscription_added")
	applog.Info(ctx, "subscribed", "userID", actor.UserID, "authorID", authorID)

	profiles, err := s.profiles(s.store.Read(ctx), actor, []models.User{author}, s.previewLimit(recipesLimit))
	if err != nil {
		return AuthorProfile{}, err
	}
	return profiles[0], nil
}

func (s *Service) Unsubscribe(ctx context.Context, actor Actor, authorID uint) error {
	if err := actor.require(); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		return tx.Subscriptions.Remove(actor.UserID, authorID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("not subscribed to user %d: %w", authorID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	metrics.RecordEvent("subscription_removed")
	return nil
}

// ListFollows returns the authors actor follows, highest id first, each
// with a recipe preview and their total recipe count.
func (s *Service) ListFollows(ctx context.Context, actor Actor, page PageRequest, recipesLimit int) (Page[AuthorProfile], error) {
	if err := actor.require(); err != nil {
		return Page[AuthorProfile]{}, err
	}
	page = s.normalise(page)
	repos := s.store.Read(ctx)

	authors, total, err := repos.Subscriptions.FollowedAuthors(actor.UserID, page.Offset, page.Limit)
	if err != nil {
		return Page[AuthorProfile]{}, err
	}
	profiles, err := s.profiles(repos, actor, authors, s.previewLimit(recipesLimit))
	if err != nil {
		return Page[AuthorProfile]{}, err
	}
	return Page[AuthorProfile]{Count: total, Limit: page.Limit, Offset: page.Offset, Results: profiles}, nil
}

func (s *Service) profiles(repos *store.Repositories, viewer Actor, authors []models.User, limit int) ([]AuthorProfile, error) {
	ids := make([]uint, 0, len(authors))
	for _, author := range authors {
		ids = append(ids, author.ID)
	}

	counts, err := repos.Recipes.CountByAuthors(ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := repos.Subscriptions.Among(viewer.UserID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]AuthorProfile, 0, len(authors))
	for _, author := range authors {
		recipes, err := repos.Recipes.ByAuthor(author.ID, limit)
		if err != nil {
			return nil, err
		}
		summaries := make([]RecipeSummary, 0, len(recipes))
		for _, recipe := range recipes {
			summaries = append(summaries, toSummary(recipe))
		}
		out = append(out, AuthorProfile{
			UserView:     toUserView(author, subscribed[author.ID]),
			Recipes:      summaries,
			RecipesCount: counts[author.ID],
		})
	}
	return out, nil
}
