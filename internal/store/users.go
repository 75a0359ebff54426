package store

import (
	"fmt"
	"strings"

	"foodgram/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func (r UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", classify(err))
	}
	return nil
}

func (r UserRepository) ByID(id uint) (models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return models.User{}, fmt.Errorf("load user %d: %w", id, classify(err))
	}
	return user, nil
}

// ByEmail looks the address up case-insensitively.
func (r UserRepository) ByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return models.User{}, fmt.Errorf("load user by email: %w", classify(err))
	}
	return user, nil
}

// EmailOrUsernameTaken reports which of the two identity fields already exist.
func (r UserRepository) EmailOrUsernameTaken(email, username string) (emailTaken, usernameTaken bool, err error) {
	var count int64
	if err = r.db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error; err != nil {
		return false, false, fmt.Errorf("check email: %w", err)
	}
	emailTaken = count > 0
	if err = r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, false, fmt.Errorf("check username: %w", err)
	}
	return emailTaken, count > 0, nil
}

// List returns one page of users, newest account first.
func (r UserRepository) List(offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	if err := r.db.Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Delete removes the user together with their recipes, their collections,
// and every subscription pointing at or from them.
func (r UserRepository) Delete(id uint) error {
	var recipeIDs []uint
	if err := r.db.Model(&models.Recipe{}).Where("author_id = ?", id).Pluck("id", &recipeIDs).Error; err != nil {
		return fmt.Errorf("list recipes of user %d: %w", id, err)
	}
	recipes := RecipeRepository{db: r.db}
	for _, recipeID := range recipeIDs {
		if err := recipes.Delete(recipeID); err != nil {
			return err
		}
	}

	if err := r.db.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete favorites of user %d: %w", id, err)
	}
	if err := r.db.Where("user_id = ?", id).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
		return fmt.Errorf("delete cart of user %d: %w", id, err)
	}
	if err := r.db.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("delete subscriptions of user %d: %w", id, err)
	}

	result := r.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}
	return nil
}
