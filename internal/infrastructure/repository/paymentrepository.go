package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/domain/payment"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/mappers"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
	"github.com/pecal-inc/pecal/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("payment_id = ?", model.ID).
		Updates(map[string]interface{}{
			"tid":             model.TID,
			"subscription_id": model.SubscriptionID,
			"status":          model.Status,
			"result_code":     model.ResultCode,
			"result_msg":      model.ResultMsg,
			"raw_response":    model.RawResponse,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}

	// RowsAffected may be 0 when the values are unchanged.
	return nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).Where("order_id = ?", orderID).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by order ID: %w", err)
	}

	return mappers.PaymentToDomain(&model), nil
}

func (r *PaymentRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*payment.Payment, error) {
	var rows []models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Order("payment_id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	result := make([]*payment.Payment, 0, len(rows))
	for i := range rows {
		result = append(result, mappers.PaymentToDomain(&rows[i]))
	}
	return result, nil
}
