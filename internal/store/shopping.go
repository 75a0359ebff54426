package store

import (
	"fmt"

	"gorm.io/gorm"
)

// ShoppingRow is the summed amount of one ingredient across a cart.
type ShoppingRow struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

type ShoppingRepository struct {
	db *gorm.DB
}

// Aggregate sums every ingredient line of the recipes in the user's cart,
// grouped by ingredient name and unit.
func (r ShoppingRepository) Aggregate(userID uint) ([]ShoppingRow, error) {
	var rows []ShoppingRow
	err := r.db.Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Order("ingredients.measurement_unit").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return rows, nil
}
