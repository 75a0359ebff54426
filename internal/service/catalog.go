package service

import (
	"context"

	"foodgram/models"
)

func (s *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	return s.store.Read(ctx).Catalog.Tags()
}

func (s *Service) Tag(ctx context.Context, id uint) (models.Tag, error) {
	tag, err := s.store.Read(ctx).Catalog.TagByID(id)
	if err != nil {
		return models.Tag{}, translate(err, "tag")
	}
	return tag, nil
}

// Ingredients lists catalog entries whose name starts with prefix.
func (s *Service) Ingredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	return s.store.Read(ctx).Catalog.Ingredients(prefix)
}

func (s *Service) Ingredient(ctx context.Context, id uint) (models.Ingredient, error) {
	ingredient, err := s.store.Read(ctx).Catalog.IngredientByID(id)
	if err != nil {
		return models.Ingredient{}, translate(err, "ingredient")
	}
	return ingredient, nil
}
