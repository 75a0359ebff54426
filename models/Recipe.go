package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey"`
	AuthorID    uint      `gorm:"not null;index"`
	Author      *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Image       string    `gorm:"not null"`
	Text        string    `gorm:"type:text;not null"`
	CookingTime int       `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	PublishedAt time.Time `gorm:"autoCreateTime;index;not null"`
	UpdatedAt   time.Time

	TagLinks        []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	IngredientLines []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeTag links a recipe to a tag.
type RecipeTag struct {
	ID       uint `gorm:"primaryKey"`
	RecipeID uint `gorm:"not null;uniqueIndex:idx_recipe_tag_pair"`
	TagID    uint `gorm:"not null;uniqueIndex:idx_recipe_tag_pair;index"`
	Tag      *Tag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is one ingredient line of a recipe. A recipe lists each
// ingredient at most once.
type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey"`
	RecipeID     uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair;index"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int         `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}
