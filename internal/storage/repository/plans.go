package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-plans/internal/models"
	"github.com/magabrotheeeer/subscription-plans/internal/storage"
)

const planColumns = `id, name, price, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (models.Plan, error) {
	var p models.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePlan вставляет новый активный план и возвращает сохранённую запись.
func (s *Storage) CreatePlan(ctx context.Context, name string, price decimal.Decimal) (models.Plan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return models.Plan{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (name, price, status)
			  VALUES ($1, $2, $3)
			  RETURNING ` + planColumns
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, name, price, models.PlanStatusActive))
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// FindPlanByID возвращает план по ID независимо от статуса.
func (s *Storage) FindPlanByID(ctx context.Context, id int64) (models.Plan, error) {
	const op = "storage.FindPlanByID"
	select {
	case <-ctx.Done():
		return models.Plan{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, fmt.Errorf("%s: %w", op, storage.ErrPlanNotFound)
	}
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// ListPlans возвращает планы с указанным статусом, упорядоченные по ID.
func (s *Storage) ListPlans(ctx context.Context, status models.PlanStatus) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE status = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Plan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, plan)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan частично обновляет активный план: nil-поля сохраняют прежнее значение.
func (s *Storage) UpdatePlan(ctx context.Context, id int64, name *string, price *decimal.Decimal) (models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return models.Plan{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var nameArg, priceArg any
	if name != nil {
		nameArg = *name
	}
	if price != nil {
		priceArg = *price
	}

	query := `UPDATE plans
			  SET name = COALESCE($2, name),
			      price = COALESCE($3, price),
			      updated_at = NOW()
			  WHERE id = $1 AND status = $4
			  RETURNING ` + planColumns
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, id, nameArg, priceArg, models.PlanStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, fmt.Errorf("%s: %w", op, storage.ErrPlanNotFound)
	}
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// SetPlanStatus меняет статус активного плана. Используется для мягкого удаления.
func (s *Storage) SetPlanStatus(ctx context.Context, id int64, status models.PlanStatus) (models.Plan, error) {
	const op = "storage.SetPlanStatus"
	select {
	case <-ctx.Done():
		return models.Plan{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans
			  SET status = $2, updated_at = NOW()
			  WHERE id = $1 AND status = $3
			  RETURNING ` + planColumns
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, id, status, models.PlanStatusActive))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, fmt.Errorf("%s: %w", op, storage.ErrPlanNotFound)
	}
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}
