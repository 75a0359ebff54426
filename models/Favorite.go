package models

import "time"

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`
	User      *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// ShoppingCartEntry places a recipe in a user's cart.
type ShoppingCartEntry struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_shopping_cart_pair"`
	RecipeID  uint    `gorm:"not null;uniqueIndex:idx_shopping_cart_pair;index"`
	User      *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe    *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// Subscription records that UserID follows AuthorID. Following oneself is
// rejected by the service layer, not the schema.
type Subscription struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    uint  `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	AuthorID  uint  `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	User      *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author    *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
