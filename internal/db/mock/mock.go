package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "foodgram-demo"

// Open returns an empty, migrated in-memory sqlite database. Each call gets
// its own database so tests do not share state. The pool is pinned to one
// connection so writes from concurrent goroutines serialise.
func Open(ctx context.Context) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:foodgram-%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.WithContext(ctx)); err != nil {
		return nil, err
	}
	return database, nil
}

// New returns an in-memory sqlite database seeded with demo users, tags,
// ingredients and recipes.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := Open(ctx)
	if err != nil {
		return nil, err
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(ctx, tx)
	}); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, tx *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Email: "anna@foodgram.app", Username: "anna", FirstName: "Anna", LastName: "Petrova", PasswordHash: string(password)},
		{Email: "boris@foodgram.app", Username: "boris", FirstName: "Boris", LastName: "Ivanov", PasswordHash: string(password)},
	}
	if err := tx.Create(&users).Error; err != nil {
		return err
	}

	tags := []models.Tag{
		{Name: "Breakfast", Slug: "breakfast", Color: "#E26C2D"},
		{Name: "Lunch", Slug: "lunch", Color: "#49B64E"},
		{Name: "Dinner", Slug: "dinner", Color: "#8775D2"},
	}
	if err := tx.Create(&tags).Error; err != nil {
		return err
	}

	ingredients := []models.Ingredient{
		{Name: "eggs", MeasurementUnit: "pcs"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "butter", MeasurementUnit: "g"},
		{Name: "potatoes", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	}
	if err := tx.Create(&ingredients).Error; err != nil {
		return err
	}

	recipes := []models.Recipe{
		{
			AuthorID:    users[0].ID,
			Name:        "Pancakes",
			Image:       "/media/recipes/seed-pancakes.png",
			Text:        "Whisk eggs with milk, fold in flour, fry thin rounds in butter.",
			CookingTime: 25,
			TagLinks:    []models.RecipeTag{{TagID: tags[0].ID}},
			IngredientLines: []models.RecipeIngredient{
				{IngredientID: ingredients[0].ID, Amount: 2},
				{IngredientID: ingredients[1].ID, Amount: 500},
				{IngredientID: ingredients[2].ID, Amount: 200},
				{IngredientID: ingredients[3].ID, Amount: 30},
			},
		},
		{
			AuthorID:    users[1].ID,
			Name:        "Mashed potatoes",
			Image:       "/media/recipes/seed-mash.png",
			Text:        "Boil potatoes in salted water, mash with butter and warm milk.",
			CookingTime: 40,
			TagLinks:    []models.RecipeTag{{TagID: tags[1].ID}, {TagID: tags[2].ID}},
			IngredientLines: []models.RecipeIngredient{
				{IngredientID: ingredients[4].ID, Amount: 800},
				{IngredientID: ingredients[3].ID, Amount: 50},
				{IngredientID: ingredients[1].ID, Amount: 100},
				{IngredientID: ingredients[5].ID, Amount: 1},
			},
		},
	}
	for i := range recipes {
		if err := tx.Create(&recipes[i]).Error; err != nil {
			return err
		}
	}

	if err := tx.Create(&models.Subscription{UserID: users[0].ID, AuthorID: users[1].ID}).Error; err != nil {
		return err
	}
	if err := tx.Create(&models.ShoppingCartEntry{UserID: users[0].ID, RecipeID: recipes[0].ID}).Error; err != nil {
		return err
	}
	if err := tx.Create(&models.ShoppingCartEntry{UserID: users[0].ID, RecipeID: recipes[1].ID}).Error; err != nil {
		return err
	}
	return tx.Create(&models.Favorite{UserID: users[1].ID, RecipeID: recipes[0].ID}).Error
}
