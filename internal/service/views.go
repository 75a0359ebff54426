package service

import (
	"time"

	"foodgram/internal/store"
	"foodgram/models"
)

type UserView struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type IngredientLine struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeDetail is the read projection of a recipe for one viewer.
type RecipeDetail struct {
	ID               uint             `json:"id"`
	Tags             []models.Tag     `json:"tags"`
	Author           UserView         `json:"author"`
	Ingredients      []IngredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
	PublishedAt      time.Time        `json:"pub_date"`
}

type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorProfile is a followed user with a preview of their recipes.
type AuthorProfile struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// ViewerFlags are the viewer-relative booleans of a recipe detail.
type ViewerFlags struct {
	Favorited          bool
	InShoppingCart     bool
	SubscribedToAuthor bool
}

// ToDetailView projects a recipe loaded with its author, tags and
// ingredient lines.
func ToDetailView(recipe models.Recipe, flags ViewerFlags) RecipeDetail {
	detail := RecipeDetail{
		ID:               recipe.ID,
		Tags:             make([]models.Tag, 0, len(recipe.TagLinks)),
		Ingredients:      make([]IngredientLine, 0, len(recipe.IngredientLines)),
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		PublishedAt:      recipe.PublishedAt,
	}
	if recipe.Author != nil {
		detail.Author = toUserView(*recipe.Author, flags.SubscribedToAuthor)
	}
	for _, link := range recipe.TagLinks {
		if link.Tag != nil {
			detail.Tags = append(detail.Tags, *link.Tag)
		}
	}
	for _, line := range recipe.IngredientLines {
		item := IngredientLine{ID: line.IngredientID, Amount: line.Amount}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		detail.Ingredients = append(detail.Ingredients, item)
	}
	return detail
}

// FromCreateRequest turns a write submission into the recipe row and the
// association sets to store with it. Image is left for the caller to fill
// with the stored reference.
func FromCreateRequest(authorID uint, in RecipeInput) (models.Recipe, []uint, []store.IngredientAmount) {
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	tagIDs := append([]uint(nil), in.Tags...)
	lines := make([]store.IngredientAmount, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		lines = append(lines, store.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	return recipe, tagIDs, lines
}

func toUserView(user models.User, subscribed bool) UserView {
	return UserView{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func toSummary(recipe models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}
