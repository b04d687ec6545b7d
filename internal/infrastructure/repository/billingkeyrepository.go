package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/mappers"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
	"github.com/pecal-inc/pecal/internal/shared/db"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type BillingKeyRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewBillingKeyRepository(db *gorm.DB, logger logger.Interface) billingkey.Repository {
	return &BillingKeyRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *BillingKeyRepositoryImpl) GetActiveByMemberID(ctx context.Context, memberID uint) (*billingkey.BillingKey, error) {
	var model models.BillingKeyModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("member_id = ? AND status = ?", memberID, billingkey.StatusActive).
		Order("created_at DESC").
		Order("billing_key_id DESC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get active billing key", "member_id", memberID, "error", err)
		return nil, fmt.Errorf("failed to get active billing key: %w", err)
	}

	return mappers.BillingKeyToDomain(&model), nil
}

func (r *BillingKeyRepositoryImpl) GetByID(ctx context.Context, id uint) (*billingkey.BillingKey, error) {
	var model models.BillingKeyModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get billing key: %w", err)
	}

	return mappers.BillingKeyToDomain(&model), nil
}

func (r *BillingKeyRepositoryImpl) Save(ctx context.Context, k *billingkey.BillingKey) ([]*billingkey.BillingKey, error) {
	model := mappers.BillingKeyToModel(k)
	var retired []*billingkey.BillingKey

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		// Locking the member's active rows (or the index gap when there are
		// none) serializes concurrent saves for the same member.
		var previous []models.BillingKeyModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("member_id = ? AND status = ?", model.MemberID, billingkey.StatusActive).
			Find(&previous).Error; err != nil {
			return fmt.Errorf("failed to load previous billing keys: %w", err)
		}

		if len(previous) > 0 {
			ids := make([]uint, 0, len(previous))
			for i := range previous {
				ids = append(ids, previous[i].ID)
			}
			removedAt := model.CreatedAt
			if err := tx.Model(&models.BillingKeyModel{}).
				Where("billing_key_id IN ?", ids).
				Updates(map[string]interface{}{
					"status":     string(billingkey.StatusRemoved),
					"removed_at": removedAt,
				}).Error; err != nil {
				return fmt.Errorf("failed to retire previous billing keys: %w", err)
			}
			for i := range previous {
				previous[i].Status = string(billingkey.StatusRemoved)
				previous[i].RemovedAt = &removedAt
				retired = append(retired, mappers.BillingKeyToDomain(&previous[i]))
			}
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert billing key: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Errorw("failed to save billing key", "member_id", model.MemberID, "error", err)
		return nil, err
	}

	k.SetID(model.ID)
	r.logger.Infow("billing key saved",
		"id", model.ID,
		"member_id", model.MemberID,
		"card_name", model.CardName,
		"retired", len(retired),
	)
	return retired, nil
}

func (r *BillingKeyRepositoryImpl) RemoveByID(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.BillingKeyModel{}).
		Where("billing_key_id = ? AND status = ?", id, billingkey.StatusActive).
		Updates(map[string]interface{}{
			"status":     string(billingkey.StatusRemoved),
			"removed_at": time.Now().UTC().Truncate(time.Second),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to remove billing key", "id", id, "error", result.Error)
		return fmt.Errorf("failed to remove billing key: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Infow("billing key removed", "id", id)
	}
	return nil
}
