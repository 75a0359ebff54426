package store

import (
	"fmt"
	"strings"

	"foodgram/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeQuery narrows a recipe listing. Zero values disable a filter.
type RecipeQuery struct {
	// TagSlugs matches recipes carrying a tag whose slug contains any of
	// the values, ignoring case.
	TagSlugs    []string
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
}

// IngredientAmount is one ingredient line to be written.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

type RecipeRepository struct {
	db *gorm.DB
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("TagLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("recipe_tags.id") }).
		Preload("TagLinks.Tag").
		Preload("IngredientLines", func(tx *gorm.DB) *gorm.DB { return tx.Order("recipe_ingredients.id") }).
		Preload("IngredientLines.Ingredient")
}

// Insert stores the recipe row and its links. PublishedAt is assigned here.
func (r RecipeRepository) Insert(recipe *models.Recipe, tagIDs []uint, lines []IngredientAmount) error {
	if err := r.db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		return fmt.Errorf("insert recipe: %w", classify(err))
	}
	return r.insertLinks(recipe.ID, tagIDs, lines)
}

// UpdateFields overwrites the given scalar columns.
func (r RecipeRepository) UpdateFields(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Model(&models.Recipe{ID: id}).Updates(fields).Error; err != nil {
		return fmt.Errorf("update recipe %d: %w", id, classify(err))
	}
	return nil
}

// ReplaceLinks drops every tag link and ingredient line of the recipe and
// writes the new sets.
func (r RecipeRepository) ReplaceLinks(recipeID uint, tagIDs []uint, lines []IngredientAmount) error {
	if err := r.db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("clear tags of recipe %d: %w", recipeID, err)
	}
	if err := r.db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("clear ingredients of recipe %d: %w", recipeID, err)
	}
	return r.insertLinks(recipeID, tagIDs, lines)
}

func (r RecipeRepository) insertLinks(recipeID uint, tagIDs []uint, lines []IngredientAmount) error {
	if len(tagIDs) > 0 {
		links := make([]models.RecipeTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
		}
		if err := r.db.Create(&links).Error; err != nil {
			return fmt.Errorf("insert tags of recipe %d: %w", recipeID, classify(err))
		}
	}
	if len(lines) > 0 {
		rows := make([]models.RecipeIngredient, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: line.IngredientID, Amount: line.Amount})
		}
		if err := r.db.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert ingredients of recipe %d: %w", recipeID, classify(err))
		}
	}
	return nil
}

// Delete removes the recipe and every row that references it.
func (r RecipeRepository) Delete(id uint) error {
	dependents := []any{
		&models.RecipeTag{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	}
	for _, model := range dependents {
		if err := r.db.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
			return fmt.Errorf("delete dependents of recipe %d: %w", id, err)
		}
	}
	result := r.db.Delete(&models.Recipe{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete recipe %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete recipe %d: %w", id, ErrNotFound)
	}
	return nil
}

// Get loads a recipe with author, tags and ingredient lines.
func (r RecipeRepository) Get(id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(r.db).First(&recipe, id).Error; err != nil {
		return models.Recipe{}, fmt.Errorf("load recipe %d: %w", id, classify(err))
	}
	return recipe, nil
}

// Find loads the recipe row without its associations.
func (r RecipeRepository) Find(id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.First(&recipe, id).Error; err != nil {
		return models.Recipe{}, fmt.Errorf("load recipe %d: %w", id, classify(err))
	}
	return recipe, nil
}

// AuthorOf returns the author id of the recipe.
func (r RecipeRepository) AuthorOf(id uint) (uint, error) {
	var recipe models.Recipe
	if err := r.db.Select("id", "author_id").First(&recipe, id).Error; err != nil {
		return 0, fmt.Errorf("load recipe %d: %w", id, classify(err))
	}
	return recipe.AuthorID, nil
}

// List returns one page of recipes matching q, newest first, and the total
// number of matches.
func (r RecipeRepository) List(q RecipeQuery, offset, limit int) ([]models.Recipe, int64, error) {
	query := r.db.Model(&models.Recipe{})

	if slugs := nonEmpty(q.TagSlugs); len(slugs) > 0 {
		conditions := make([]string, 0, len(slugs))
		args := make([]any, 0, len(slugs))
		for _, slug := range slugs {
			conditions = append(conditions, "LOWER(tags.slug) LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(strings.ToLower(slug))+"%")
		}
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where(strings.Join(conditions, " OR "), args...)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if q.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", q.AuthorID)
	}
	if q.FavoritedBy != 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", q.FavoritedBy))
	}
	if q.InCartOf != 0 {
		query = query.Where("recipes.id IN (?)",
			r.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", q.InCartOf))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withDetails(query).
		Order("recipes.published_at DESC").
		Order("recipes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}

// ByAuthor returns up to limit recipes of the author, newest first. A
// negative limit returns all of them.
func (r RecipeRepository) ByAuthor(authorID uint, limit int) ([]models.Recipe, error) {
	if limit == 0 {
		return []models.Recipe{}, nil
	}
	query := r.db.Where("author_id = ?", authorID).Order("published_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes of author %d: %w", authorID, err)
	}
	return recipes, nil
}

// CountByAuthors returns the number of recipes per author id. Authors with
// no recipes are absent from the map.
func (r RecipeRepository) CountByAuthors(authorIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count recipes by author: %w", err)
	}
	for _, row := range rows {
		out[row.AuthorID] = row.Total
	}
	return out, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
