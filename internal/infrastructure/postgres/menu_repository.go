package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
	"github.com/jhoicas/Despensa-api/internal/domain/repository"
)

var _ repository.MenuRepository = (*MenuRepo)(nil)

// MenuRepo menús y sus franjas sobre PostgreSQL.
type MenuRepo struct {
	q Querier
}

// NewMenuRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMenuRepository(q Querier) *MenuRepo {
	return &MenuRepo{q: q}
}

// Create inserta el menú y sus franjas en un solo batch.
func (r *MenuRepo) Create(ctx context.Context, m *entity.MenuPlan) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO menu_plans (id, days, servings, constraints, planner, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Days, m.Servings, m.Constraints, m.Planner, m.GeneratedAt)
	for i, it := range m.Items {
		b.Queue(`
			INSERT INTO menu_plan_items (id, menu_id, position, date, meal_type, recipe_id, recipe_name, explain, nutrition)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, m.ID, i, it.Date, it.MealType, it.RecipeID, it.RecipeName, it.Explain, nullJSON(it.Nutrition))
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// GetByID obtiene el menú con sus franjas en orden. Si no existe retorna (nil, nil).
func (r *MenuRepo) GetByID(ctx context.Context, id string) (*entity.MenuPlan, error) {
	var m entity.MenuPlan
	err := r.q.QueryRow(ctx, `
		SELECT id, days, servings, constraints, planner, generated_at
		FROM menu_plans WHERE id = $1`, id).Scan(
		&m.ID, &m.Days, &m.Servings, &m.Constraints, &m.Planner, &m.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get menu: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, menu_id, date, meal_type, recipe_id, recipe_name, explain, nutrition
		FROM menu_plan_items WHERE menu_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.MenuPlanItem
		var nutrition []byte
		if err := rows.Scan(&it.ID, &it.MenuID, &it.Date, &it.MealType, &it.RecipeID, &it.RecipeName, &it.Explain, &nutrition); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		it.Nutrition = nutrition
		m.Items = append(m.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &m, nil
}
