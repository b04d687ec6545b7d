package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/application/subscription/dto"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type ChangeStatusCommand struct {
	MemberID       uint
	SubscriptionID uint
	Status         vo.SubscriptionStatus
}

// ChangeStatusUseCase applies a member requested status change. Only moves
// out of ACTIVE exist; cancelling twice is accepted.
type ChangeStatusUseCase struct {
	subscriptionRepo subscription.Repository
	guard            *common.OwnerGuard
	logger           logger.Interface
	now              func() time.Time
}

func NewChangeStatusUseCase(
	subscriptionRepo subscription.Repository,
	guard *common.OwnerGuard,
	logger logger.Interface,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		subscriptionRepo: subscriptionRepo,
		guard:            guard,
		logger:           logger,
		now:              biztime.NowUTC,
	}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.SubscriptionDTO, error) {
	if cmd.SubscriptionID == 0 {
		return nil, errors.NewValidationError("subscription_id is required")
	}
	if !vo.ValidStatuses[cmd.Status] {
		return nil, errors.NewValidationError("invalid status", string(cmd.Status))
	}

	sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "subscription_id", cmd.SubscriptionID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}

	if err := uc.guard.Authorize(ctx, cmd.MemberID, sub.OwnerID(), sub.OwnerType()); err != nil {
		return nil, err
	}

	if sub.Status() == cmd.Status {
		return dto.ToSubscriptionDTO(sub), nil
	}
	if !sub.Status().CanTransitionTo(cmd.Status) {
		return nil, errors.NewValidationError(
			fmt.Sprintf("cannot change subscription from %s to %s", sub.Status(), cmd.Status),
		)
	}

	now := uc.now()
	switch cmd.Status {
	case vo.StatusCanceled:
		cancelled, err := uc.subscriptionRepo.Cancel(ctx, sub.ID(), now)
		if err != nil {
			uc.logger.Errorw("failed to cancel subscription", "subscription_id", sub.ID(), "error", err)
			return nil, fmt.Errorf("failed to cancel subscription: %w", err)
		}
		if !cancelled {
			return nil, uc.cancelRaceError(ctx, sub.ID())
		}
		_ = sub.Cancel(now)
	default:
		if err := uc.subscriptionRepo.UpdateStatus(ctx, sub.ID(), cmd.Status, now); err != nil {
			uc.logger.Errorw("failed to update subscription status", "subscription_id", sub.ID(), "error", err)
			return nil, fmt.Errorf("failed to update subscription status: %w", err)
		}
		_ = sub.Expire(now)
	}

	uc.logger.Infow("subscription status changed",
		"subscription_id", sub.ID(),
		"status", cmd.Status,
		"member_id", cmd.MemberID,
	)

	return dto.ToSubscriptionDTO(sub), nil
}

// cancelRaceError explains a cancel that matched no active row: the
// subscription was superseded or deleted after it was read.
func (uc *ChangeStatusUseCase) cancelRaceError(ctx context.Context, id uint) error {
	current, err := uc.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if current == nil {
		return errors.NewNotFoundError("subscription not found")
	}
	uc.logger.Warnw("subscription changed before it could be canceled",
		"subscription_id", id,
		"status", current.Status(),
	)
	return errors.NewConflictError("subscription is no longer active", string(current.Status()))
}
