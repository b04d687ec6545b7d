package usecases

import (
	"context"
	"fmt"

	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/application/subscription/dto"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type ListSubscriptionsQuery struct {
	MemberID  uint
	OwnerID   uint
	OwnerType vo.OwnerType
}

type ListSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	guard            *common.OwnerGuard
	logger           logger.Interface
}

func NewListSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	guard *common.OwnerGuard,
	logger logger.Interface,
) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		guard:            guard,
		logger:           logger,
	}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, query ListSubscriptionsQuery) ([]*dto.SubscriptionDTO, error) {
	if err := validateOwner(query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, query.MemberID, query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}

	subs, err := uc.subscriptionRepo.ListByOwner(ctx, query.OwnerID, query.OwnerType)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "owner_id", query.OwnerID, "owner_type", query.OwnerType, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return dto.ToSubscriptionDTOList(subs), nil
}

// GetActiveSubscriptionUseCase returns the owner's ACTIVE subscription or nil.
type GetActiveSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	guard            *common.OwnerGuard
	logger           logger.Interface
}

func NewGetActiveSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	guard *common.OwnerGuard,
	logger logger.Interface,
) *GetActiveSubscriptionUseCase {
	return &GetActiveSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		guard:            guard,
		logger:           logger,
	}
}

func (uc *GetActiveSubscriptionUseCase) Execute(ctx context.Context, query ListSubscriptionsQuery) (*dto.SubscriptionDTO, error) {
	if err := validateOwner(query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, query.MemberID, query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}

	sub, err := uc.subscriptionRepo.GetActiveByOwner(ctx, query.OwnerID, query.OwnerType)
	if err != nil {
		uc.logger.Errorw("failed to get active subscription", "owner_id", query.OwnerID, "owner_type", query.OwnerType, "error", err)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return dto.ToSubscriptionDTO(sub), nil
}

func validateOwner(ownerID uint, ownerType vo.OwnerType) error {
	if ownerID == 0 {
		return errors.NewValidationError("owner_id is required")
	}
	if !ownerType.IsValid() {
		return errors.NewValidationError("owner_type must be team or personal")
	}
	return nil
}
