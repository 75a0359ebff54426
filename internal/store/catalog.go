package store

import (
	"fmt"
	"strings"

	"foodgram/models"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

// CatalogRepository reads tags and ingredients. Tags never change after
// creation, so lookups by id go through a shared cache.
type CatalogRepository struct {
	db   *gorm.DB
	tags *lru.Cache
}

func (r CatalogRepository) Tags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	for _, tag := range tags {
		r.tags.Add(tag.ID, tag)
	}
	return tags, nil
}

func (r CatalogRepository) TagByID(id uint) (models.Tag, error) {
	tags, err := r.TagsByIDs([]uint{id})
	if err != nil {
		return models.Tag{}, err
	}
	if len(tags) == 0 {
		return models.Tag{}, fmt.Errorf("load tag %d: %w", id, ErrNotFound)
	}
	return tags[0], nil
}

// TagsByIDs returns the tags that exist among ids, in the order given.
// Unknown ids are skipped.
func (r CatalogRepository) TagsByIDs(ids []uint) ([]models.Tag, error) {
	found := make(map[uint]models.Tag, len(ids))
	var missing []uint
	for _, id := range ids {
		if cached, ok := r.tags.Get(id); ok {
			found[id] = cached.(models.Tag)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		var loaded []models.Tag
		if err := r.db.Where("id IN ?", missing).Find(&loaded).Error; err != nil {
			return nil, fmt.Errorf("load tags: %w", err)
		}
		for _, tag := range loaded {
			r.tags.Add(tag.ID, tag)
			found[tag.ID] = tag
		}
	}

	out := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := found[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (r CatalogRepository) CreateTag(tag *models.Tag) error {
	if err := r.db.Create(tag).Error; err != nil {
		return fmt.Errorf("create tag: %w", classify(err))
	}
	return nil
}

// Ingredients lists the catalog ordered by name, optionally narrowed to
// names starting with prefix (case-insensitive).
func (r CatalogRepository) Ingredients(prefix string) ([]models.Ingredient, error) {
	query := r.db.Order("name").Order("id")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (r CatalogRepository) IngredientByID(id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.First(&ingredient, id).Error; err != nil {
		return models.Ingredient{}, fmt.Errorf("load ingredient %d: %w", id, classify(err))
	}
	return ingredient, nil
}

// IngredientsByIDs returns the ingredients that exist among ids keyed by id.
func (r CatalogRepository) IngredientsByIDs(ids []uint) (map[uint]models.Ingredient, error) {
	out := make(map[uint]models.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ingredients []models.Ingredient
	if err := r.db.Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	for _, ingredient := range ingredients {
		out[ingredient.ID] = ingredient
	}
	return out, nil
}

// EnsureIngredient returns the ingredient with the exact name and unit,
// creating it when absent. created reports whether a row was inserted.
func (r CatalogRepository) EnsureIngredient(name, unit string) (models.Ingredient, bool, error) {
	var existing []models.Ingredient
	if err := r.db.Where("name = ? AND measurement_unit = ?", name, unit).Order("id").Limit(1).Find(&existing).Error; err != nil {
		return models.Ingredient{}, false, fmt.Errorf("find ingredient %q: %w", name, err)
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := r.db.Create(&ingredient).Error; err != nil {
		return models.Ingredient{}, false, fmt.Errorf("create ingredient %q: %w", name, classify(err))
	}
	return ingredient, true, nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
