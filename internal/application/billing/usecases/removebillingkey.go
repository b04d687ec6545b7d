package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/id"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// RemoveBillingKeyUseCase deletes the member's card. The gateway call is
// best effort; the local key is removed regardless.
type RemoveBillingKeyUseCase struct {
	gateway        gateway.BillingGateway
	billingKeyRepo billingkey.Repository
	logger         logger.Interface
	now            func() time.Time
}

func NewRemoveBillingKeyUseCase(
	gw gateway.BillingGateway,
	billingKeyRepo billingkey.Repository,
	logger logger.Interface,
) *RemoveBillingKeyUseCase {
	return &RemoveBillingKeyUseCase{
		gateway:        gw,
		billingKeyRepo: billingKeyRepo,
		logger:         logger,
		now:            biztime.NowUTC,
	}
}

func (uc *RemoveBillingKeyUseCase) Execute(ctx context.Context, memberID uint) error {
	if memberID == 0 {
		return errors.NewUnauthorizedError("authentication required")
	}

	key, err := uc.billingKeyRepo.GetActiveByMemberID(ctx, memberID)
	if err != nil {
		uc.logger.Errorw("failed to get billing key", "member_id", memberID, "error", err)
		return fmt.Errorf("failed to get billing key: %w", err)
	}
	if key == nil {
		return errors.NewNotFoundError("no registered billing key")
	}

	orderID := id.NewOrderID(id.PrefixRemove, memberID, uc.now())
	if err := uc.gateway.RemoveBillingKey(ctx, key.BID(), orderID); err != nil {
		uc.logger.Warnw("gateway billing key removal failed, removing locally",
			"member_id", memberID,
			"billing_key_id", key.ID(),
			"error", err,
		)
	}

	if err := uc.billingKeyRepo.RemoveByID(ctx, key.ID()); err != nil {
		uc.logger.Errorw("failed to remove billing key", "billing_key_id", key.ID(), "error", err)
		return fmt.Errorf("failed to remove billing key: %w", err)
	}

	uc.logger.Infow("billing key removed", "member_id", memberID, "billing_key_id", key.ID())
	return nil
}
