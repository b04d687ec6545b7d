package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pecal-inc/pecal/internal/domain/subscription"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// DeleteSubscriptionUseCase removes a ledger row. Admin only.
type DeleteSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewDeleteSubscriptionUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *DeleteSubscriptionUseCase {
	return &DeleteSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *DeleteSubscriptionUseCase) Execute(ctx context.Context, subscriptionID uint) error {
	if err := uc.subscriptionRepo.Delete(ctx, subscriptionID); err != nil {
		if stderrors.Is(err, subscription.ErrSubscriptionNotFound) {
			return errors.NewNotFoundError("subscription not found")
		}
		uc.logger.Errorw("failed to delete subscription", "subscription_id", subscriptionID, "error", err)
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	uc.logger.Infow("subscription deleted", "subscription_id", subscriptionID)
	return nil
}
