package repository

import (
	"context"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// RecipeRepository acceso de solo lectura a recetas e ingredientes.
type RecipeRepository interface {
	List(ctx context.Context) ([]*entity.Recipe, error)
	// Ingredients devuelve los ingredientes de todas las recetas agrupados por receta.
	Ingredients(ctx context.Context) (map[int64][]entity.RecipeIngredient, error)
	Count(ctx context.Context) (int, error)
}
