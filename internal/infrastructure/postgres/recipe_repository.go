package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas e ingredientes sobre PostgreSQL.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// List recetas ordenadas por ID.
func (r *RecipeRepo) List(ctx context.Context) ([]*entity.Recipe, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, tags, allergens, steps, nutrition
		FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Recipe
	for rows.Next() {
		var rc entity.Recipe
		var nutrition []byte
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.Tags, &rc.Allergens, &rc.Steps, &nutrition); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		rc.Nutrition = nutrition
		list = append(list, &rc)
	}
	return list, rows.Err()
}

// Ingredients todos los ingredientes agrupados por receta.
func (r *RecipeRepo) Ingredients(ctx context.Context) (map[int64][]entity.RecipeIngredient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT recipe_id, item_id, quantity, unit, optional
		FROM recipe_ingredients ORDER BY recipe_id, item_id`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.RecipeIngredient)
	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.RecipeID, &ing.ItemID, &ing.Quantity, &ing.Unit, &ing.Optional); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out[ing.RecipeID] = append(out[ing.RecipeID], ing)
	}
	return out, rows.Err()
}

// Count cantidad de recetas.
func (r *RecipeRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}
