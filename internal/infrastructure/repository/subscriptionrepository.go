package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/mappers"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
	"github.com/pecal-inc/pecal/internal/shared/constants"
	"github.com/pecal-inc/pecal/internal/shared/db"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SubscriptionModel{}).
			Where("owner_id = ? AND owner_type = ? AND status = ?", model.OwnerID, model.OwnerType, vo.StatusActive).
			Updates(map[string]interface{}{
				"status":            vo.StatusExpired.String(),
				"ended_at":          model.StartedAt,
				"next_payment_date": nil,
			}).Error; err != nil {
			return fmt.Errorf("failed to expire previous subscription: %w", err)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Errorw("failed to create subscription",
			"owner_id", model.OwnerID,
			"owner_type", model.OwnerType,
			"plan_id", model.PlanID,
			"error", err,
		)
		return err
	}

	if err := s.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created",
		"id", model.ID,
		"owner_id", model.OwnerID,
		"owner_type", model.OwnerType,
		"plan_id", model.PlanID,
	)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*subscription.Subscription, error) {
	var row models.SubscriptionWithPlan

	err := r.withPlan(ctx).
		Where("s.owner_id = ? AND s.owner_type = ? AND s.status = ?", ownerID, ownerType.String(), vo.StatusActive).
		Order("s.started_at DESC").
		Order("s.subscription_id DESC").
		Limit(1).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get active subscription", "owner_id", ownerID, "owner_type", ownerType, "error", err)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return mappers.SubscriptionWithPlanToDomain(&row)
}

func (r *SubscriptionRepositoryImpl) ListByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionWithPlan

	err := r.withPlan(ctx).
		Where("s.owner_id = ? AND s.owner_type = ?", ownerID, ownerType.String()).
		Order("s.started_at DESC").
		Order("s.subscription_id DESC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list subscriptions", "owner_id", ownerID, "owner_type", ownerType, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	result := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		s, err := mappers.SubscriptionWithPlanToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func (r *SubscriptionRepositoryImpl) withPlan(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db).
		Table(constants.TableSubscriptions + " AS s").
		Select("s.*, p.name AS plan_name, p.price AS plan_price").
		Joins("LEFT JOIN " + constants.TablePlans + " AS p ON p.plan_id = s.plan_id")
}

// Cancel ends an ACTIVE subscription. It returns true when the subscription
// is CANCELED afterwards, so a repeated call is a successful no-op.
func (r *SubscriptionRepositoryImpl) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.SubscriptionModel{}).
		Where("subscription_id = ? AND status = ?", id, vo.StatusActive).
		Updates(map[string]interface{}{
			"status":            vo.StatusCanceled.String(),
			"ended_at":          at.UTC().Truncate(time.Second),
			"next_payment_date": nil,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to cancel subscription", "id", id, "error", result.Error)
		return false, fmt.Errorf("failed to cancel subscription: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Infow("subscription canceled", "id", id)
		return true, nil
	}

	var statuses []string
	err := tx.Model(&models.SubscriptionModel{}).
		Where("subscription_id = ?", id).
		Pluck("status", &statuses).Error
	if err != nil {
		return false, fmt.Errorf("failed to read subscription status: %w", err)
	}
	return len(statuses) == 1 && statuses[0] == vo.StatusCanceled.String(), nil
}

// UpdateStatus writes a new status. Leaving ACTIVE stamps ended_at and
// clears the payment schedule.
func (r *SubscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error {
	updates := map[string]interface{}{
		"status": status.String(),
	}
	if status.IsTerminal() {
		updates["ended_at"] = at.UTC().Truncate(time.Second)
		updates["next_payment_date"] = nil
	} else {
		updates["ended_at"] = nil
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("subscription_id = ?", id).
		Updates(updates)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription status", "id", id, "status", status, "error", result.Error)
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	r.logger.Infow("subscription status updated", "id", id, "status", status)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetDue(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_payment_date IS NOT NULL AND next_payment_date <= ?", vo.StatusActive, now.UTC()).
		Order("next_payment_date ASC").
		Order("subscription_id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to query due subscriptions", "error", err)
		return nil, fmt.Errorf("failed to get due subscriptions: %w", err)
	}

	return mappers.SubscriptionsToDomain(rows)
}

// AdvancePaymentDate renews from the previous due date, not from now, so a
// late charge does not shift the billing day.
func (r *SubscriptionRepositoryImpl) AdvancePaymentDate(ctx context.Context, id uint) error {
	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var model models.SubscriptionModel
		if err := tx.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return subscription.ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		s, err := mappers.SubscriptionToDomain(&model)
		if err != nil {
			return err
		}
		previous := s.NextPaymentDate()
		if previous == nil {
			return subscription.ErrNotScheduled
		}
		if err := s.Renew(); err != nil {
			return err
		}

		result := tx.Model(&models.SubscriptionModel{}).
			Where("subscription_id = ? AND next_payment_date = ?", id, model.NextPaymentDate).
			Updates(map[string]interface{}{
				"next_payment_date": *s.NextPaymentDate(),
				"retry_count":       0,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to advance payment date", "id", id, "error", result.Error)
			return fmt.Errorf("failed to advance payment date: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return subscription.ErrConcurrentUpdate
		}

		r.logger.Infow("payment date advanced",
			"id", id,
			"previous", previous.Format(time.RFC3339),
			"next", s.NextPaymentDate().Format(time.RFC3339),
		)
		return nil
	})
}

func (r *SubscriptionRepositoryImpl) IncrementRetryCount(ctx context.Context, id uint) (int, error) {
	var counts []int

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SubscriptionModel{}).
			Where("subscription_id = ?", id).
			UpdateColumn("retry_count", gorm.Expr("retry_count + ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to increment retry count: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return subscription.ErrSubscriptionNotFound
		}
		return tx.Model(&models.SubscriptionModel{}).
			Where("subscription_id = ?", id).
			Pluck("retry_count", &counts).Error
	})
	if err != nil {
		r.logger.Errorw("failed to increment retry count", "id", id, "error", err)
		return 0, err
	}
	if len(counts) == 0 {
		return 0, subscription.ErrSubscriptionNotFound
	}

	return counts[0], nil
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.SubscriptionModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete subscription", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	r.logger.Infow("subscription deleted", "id", id)
	return nil
}
