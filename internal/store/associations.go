package store

import (
	"fmt"

	"foodgram/models"

	"gorm.io/gorm"
)

// pairTable describes a junction table keyed by (user_id, <target>).
type pairTable struct {
	name   string
	target string
	model  func() any
	build  func(userID, targetID uint) any
}

var (
	favoritesTable = pairTable{
		name:   "favorite",
		target: "recipe_id",
		model:  func() any { return &models.Favorite{} },
		build: func(userID, recipeID uint) any {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
	shoppingCartTable = pairTable{
		name:   "shopping cart entry",
		target: "recipe_id",
		model:  func() any { return &models.ShoppingCartEntry{} },
		build: func(userID, recipeID uint) any {
			return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
	}
	subscriptionsTable = pairTable{
		name:   "subscription",
		target: "author_id",
		model:  func() any { return &models.Subscription{} },
		build: func(userID, authorID uint) any {
			return &models.Subscription{UserID: userID, AuthorID: authorID}
		},
	}
)

// PairRepository manages one (user, target) association table.
type PairRepository struct {
	db    *gorm.DB
	table pairTable
}

func (r PairRepository) Exists(userID, targetID uint) (bool, error) {
	var count int64
	err := r.db.Model(r.table.model()).
		Where("user_id = ? AND "+r.table.target+" = ?", userID, targetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", r.table.name, err)
	}
	return count > 0, nil
}

// Add inserts the pair. A pair that already exists yields ErrUniqueViolation.
func (r PairRepository) Add(userID, targetID uint) error {
	if err := r.db.Create(r.table.build(userID, targetID)).Error; err != nil {
		return fmt.Errorf("add %s: %w", r.table.name, classify(err))
	}
	return nil
}

// Remove deletes the pair and reports ErrNotFound when it was absent.
func (r PairRepository) Remove(userID, targetID uint) error {
	result := r.db.Where("user_id = ? AND "+r.table.target+" = ?", userID, targetID).Delete(r.table.model())
	if result.Error != nil {
		return fmt.Errorf("remove %s: %w", r.table.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("remove %s: %w", r.table.name, ErrNotFound)
	}
	return nil
}

// Among returns which of targetIDs are paired with userID.
func (r PairRepository) Among(userID uint, targetIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return out, nil
	}
	var matched []uint
	err := r.db.Model(r.table.model()).
		Where("user_id = ? AND "+r.table.target+" IN ?", userID, targetIDs).
		Pluck(r.table.target, &matched).Error
	if err != nil {
		return nil, fmt.Errorf("load %s flags: %w", r.table.name, err)
	}
	for _, id := range matched {
		out[id] = true
	}
	return out, nil
}

// SubscriptionRepository adds follow listing on top of the pair operations.
type SubscriptionRepository struct {
	PairRepository
}

// FollowedAuthors returns one page of the authors userID follows, highest
// author id first, and the total number followed.
func (r SubscriptionRepository) FollowedAuthors(userID uint, offset, limit int) ([]models.User, int64, error) {
	followed := r.db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID)

	var total int64
	if err := r.db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count followed authors: %w", err)
	}

	var authors []models.User
	err := r.db.Where("id IN (?)", followed).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list followed authors: %w", err)
	}
	return authors, total, nil
}
