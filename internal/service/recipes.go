package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/authz"
	"foodgram/internal/images"
	applog "foodgram/internal/log"
	"foodgram/internal/metrics"
	"foodgram/internal/store"
	"foodgram/models"
)

type IngredientInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1"`
}

// RecipeInput is the write submission for create and replace. Image is a
// base64 data URI; on replace an empty image keeps the stored one.
type RecipeInput struct {
	Ingredients []IngredientInput `json:"ingredients" validate:"unique=ID,dive"`
	Tags        []uint            `json:"tags" validate:"unique"`
	Image       string            `json:"image"`
	Name        string            `json:"name" validate:"required,max=200"`
	Text        string            `json:"text" validate:"required"`
	CookingTime int               `json:"cooking_time" validate:"min=1"`
}

type decodedImage struct {
	data []byte
	ext  string
}

// validateRecipe checks field rules, the image payload and that every
// referenced tag and ingredient exists. It returns the decoded image when
// one was submitted.
func (s *Service) validateRecipe(repos *store.Repositories, in RecipeInput, imageRequired bool) (*decodedImage, error) {
	verr := validateStruct(&in)

	var img *decodedImage
	switch {
	case strings.TrimSpace(in.Image) != "":
		data, ext, err := images.DecodeDataURI(in.Image)
		if err != nil {
			verr.add("image", "Upload a valid image as a base64 data URI.")
		} else {
			img = &decodedImage{data: data, ext: ext}
		}
	case imageRequired:
		verr.add("image", "This field is required.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	tags, err := repos.Catalog.TagsByIDs(in.Tags)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(in.Tags) {
		known := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			known[tag.ID] = true
		}
		for _, id := range in.Tags {
			if !known[id] {
				verr.add("tags", fmt.Sprintf("Tag %d does not exist.", id))
			}
		}
	}

	ids := make([]uint, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		ids = append(ids, item.ID)
	}
	ingredients, err := repos.Catalog.IngredientsByIDs(ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := ingredients[id]; !ok {
			verr.add("ingredients", fmt.Sprintf("Ingredient %d does not exist.", id))
		}
	}

	return img, verr.orNil()
}

func (s *Service) authorize(actor Actor, ownerID uint, action string) error {
	allowed, err := s.authz.Allowed(actor.UserID, ownerID, authz.ObjectRecipe, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// CreateRecipe validates the submission, stores the image and persists the
// recipe with its tags and ingredient lines in one transaction.
func (s *Service) CreateRecipe(ctx context.Context, actor Actor, in RecipeInput) (RecipeDetail, error) {
	if err := actor.require(); err != nil {
		return RecipeDetail{}, err
	}

	img, err := s.validateRecipe(s.store.Read(ctx), in, true)
	if err != nil {
		return RecipeDetail{}, err
	}

	recipe, tagIDs, lines := FromCreateRequest(actor.UserID, in)
	recipe.Image, err = s.images.Put(ctx, img.data, img.ext)
	if err != nil {
		return RecipeDetail{}, fmt.Errorf("store recipe image: %w", err)
	}

	if err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		return tx.Recipes.Insert(&recipe, tagIDs, lines)
	}); err != nil {
		return RecipeDetail{}, fmt.Errorf("create recipe: %w", err)
	}

	metrics.RecordEvent("recipe_created")
	applog.Info(ctx, "recipe created", "recipeID", recipe.ID, "authorID", actor.UserID)
	return s.ViewRecipe(ctx, actor, recipe.ID)
}

// ReplaceRecipe overwrites the scalar fields and swaps the tag and
// ingredient sets wholesale. Associations omitted from in end up empty.
func (s *Service) ReplaceRecipe(ctx context.Context, actor Actor, recipeID uint, in RecipeInput) (RecipeDetail, error) {
	if err := actor.require(); err != nil {
		return RecipeDetail{}, err
	}

	repos := s.store.Read(ctx)
	authorID, err := repos.Recipes.AuthorOf(recipeID)
	if err != nil {
		return RecipeDetail{}, translate(err, "recipe")
	}
	if err := s.authorize(actor, authorID, authz.ActionUpdate); err != nil {
		return RecipeDetail{}, err
	}

	img, err := s.validateRecipe(repos, in, false)
	if err != nil {
		return RecipeDetail{}, err
	}

	_, tagIDs, lines := FromCreateRequest(authorID, in)
	fields := map[string]any{
		"name":         in.Name,
		"text":         in.Text,
		"cooking_time": in.CookingTime,
	}
	if img != nil {
		ref, err := s.images.Put(ctx, img.data, img.ext)
		if err != nil {
			return RecipeDetail{}, fmt.Errorf("store recipe image: %w", err)
		}
		fields["image"] = ref
	}

	if err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		if err := tx.Recipes.UpdateFields(recipeID, fields); err != nil {
			return err
		}
		return tx.Recipes.ReplaceLinks(recipeID, tagIDs, lines)
	}); err != nil {
		return RecipeDetail{}, fmt.Errorf("replace recipe %d: %w", recipeID, err)
	}

	metrics.RecordEvent("recipe_replaced")
	applog.Info(ctx, "recipe replaced", "recipeID", recipeID, "authorID", actor.UserID)
	return s.ViewRecipe(ctx, actor, recipeID)
}

// DeleteRecipe removes the recipe and everything referencing it.
func (s *Service) DeleteRecipe(ctx context.Context, actor Actor, recipeID uint) error {
	if err := actor.require(); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		authorID, err := tx.Recipes.AuthorOf(recipeID)
		if err != nil {
			return translate(err, "recipe")
		}
		if err := s.authorize(actor, authorID, authz.ActionDelete); err != nil {
			return err
		}
		return translate(tx.Recipes.Delete(recipeID), "recipe")
	})
	if err != nil {
		return err
	}

	metrics.RecordEvent("recipe_deleted")
	applog.Info(ctx, "recipe deleted", "recipeID", recipeID, "actorID", actor.UserID)
	return nil
}

// ViewRecipe returns the detail projection of one recipe for viewer.
func (s *Service) ViewRecipe(ctx context.Context, viewer Actor, recipeID uint) (RecipeDetail, error) {
	repos := s.store.Read(ctx)
	recipe, err := repos.Recipes.Get(recipeID)
	if err != nil {
		return RecipeDetail{}, translate(err, "recipe")
	}
	details, err := s.details(repos, viewer, []models.Recipe{recipe})
	if err != nil {
		return RecipeDetail{}, err
	}
	return details[0], nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
func (s *Service) ListRecipes(ctx context.Context, viewer Actor, filter RecipeFilter, page PageRequest) (Page[RecipeDetail], error) {
	page = s.normalise(page)
	repos := s.store.Read(ctx)

	recipes, total, err := repos.Recipes.List(filter.query(viewer), page.Offset, page.Limit)
	if err != nil {
		return Page[RecipeDetail]{}, err
	}
	details, err := s.details(repos, viewer, recipes)
	if err != nil {
		return Page[RecipeDetail]{}, err
	}
	return Page[RecipeDetail]{Count: total, Limit: page.Limit, Offset: page.Offset, Results: details}, nil
}

func (s *Service) details(repos *store.Repositories, viewer Actor, recipes []models.Recipe) ([]RecipeDetail, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
		authorIDs = append(authorIDs, recipe.AuthorID)
	}

	favorited, err := repos.Favorites.Among(viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := repos.ShoppingCart.Among(viewer.UserID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := repos.Subscriptions.Among(viewer.UserID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeDetail, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, ToDetailView(recipe, ViewerFlags{
			Favorited:          favorited[recipe.ID],
			InShoppingCart:     inCart[recipe.ID],
			SubscribedToAuthor: subscribed[recipe.AuthorID],
		}))
	}
	return out, nil
}
