package usecases

import (
	"context"
	"fmt"

	"github.com/pecal-inc/pecal/internal/application/billing/dto"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type GetBillingKeyUseCase struct {
	billingKeyRepo billingkey.Repository
	logger         logger.Interface
}

func NewGetBillingKeyUseCase(billingKeyRepo billingkey.Repository, logger logger.Interface) *GetBillingKeyUseCase {
	return &GetBillingKeyUseCase{
		billingKeyRepo: billingKeyRepo,
		logger:         logger,
	}
}

// Execute returns the member's active key, or nil when there is none.
func (uc *GetBillingKeyUseCase) Execute(ctx context.Context, memberID uint) (*dto.BillingKeyDTO, error) {
	if memberID == 0 {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	key, err := uc.billingKeyRepo.GetActiveByMemberID(ctx, memberID)
	if err != nil {
		uc.logger.Errorw("failed to get billing key", "member_id", memberID, "error", err)
		return nil, fmt.Errorf("failed to get billing key: %w", err)
	}

	return dto.ToBillingKeyDTO(key), nil
}
