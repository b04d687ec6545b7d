package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/mappers"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
	"github.com/pecal-inc/pecal/internal/shared/db"
	apperrors "github.com/pecal-inc/pecal/internal/shared/errors"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	model := mappers.PlanToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return plan.ErrNameExists
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return mappers.PlanToDomain(&model), nil
}

func (r *PlanRepository) GetByName(ctx context.Context, name string) (*plan.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).Where("name = ?", name).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by name: %w", err)
	}

	return mappers.PlanToDomain(&model), nil
}

func (r *PlanRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	var rows []models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Order("price ASC").
		Order("plan_id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return mappers.PlansToDomain(rows), nil
}

func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	model := mappers.PlanToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("plan_id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":              model.Name,
			"price":             model.Price,
			"max_members":       model.MaxMembers,
			"max_storage_mb":    model.MaxStorageMB,
			"paypal_plan_id":    model.PayPalPlanID,
			"paypal_product_id": model.PayPalProductID,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return plan.ErrNameExists
		}
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return plan.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.PlanModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return plan.ErrPlanNotFound
	}
	return nil
}
