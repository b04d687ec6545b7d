package usecases

import (
	"context"
	"fmt"

	"github.com/pecal-inc/pecal/internal/application/plan/dto"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type SeedPlansResult struct {
	Created int
	Updated int
}

// SeedPlansUseCase upserts reference plans by name.
type SeedPlansUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewSeedPlansUseCase(planRepo plan.Repository, logger logger.Interface) *SeedPlansUseCase {
	return &SeedPlansUseCase{planRepo: planRepo, logger: logger}
}

func (uc *SeedPlansUseCase) Execute(ctx context.Context, plans []dto.PlanRequest) (*SeedPlansResult, error) {
	result := &SeedPlansResult{}

	for _, req := range plans {
		existing, err := uc.planRepo.GetByName(ctx, req.Name)
		if err != nil {
			return result, fmt.Errorf("failed to look up plan %q: %w", req.Name, err)
		}

		if existing == nil {
			p, err := plan.NewPlan(req.Name, req.Price, req.MaxMembers, req.MaxStorageMB)
			if err != nil {
				return result, fmt.Errorf("invalid plan %q: %w", req.Name, err)
			}
			p.SetPayPalIDs(req.PayPalPlanID, req.PayPalProductID)
			if err := uc.planRepo.Create(ctx, p); err != nil {
				return result, fmt.Errorf("failed to create plan %q: %w", req.Name, err)
			}
			result.Created++
			continue
		}

		if err := existing.Update(req.Name, req.Price, req.MaxMembers, req.MaxStorageMB); err != nil {
			return result, fmt.Errorf("invalid plan %q: %w", req.Name, err)
		}
		existing.SetPayPalIDs(req.PayPalPlanID, req.PayPalProductID)
		if err := uc.planRepo.Update(ctx, existing); err != nil {
			return result, fmt.Errorf("failed to update plan %q: %w", req.Name, err)
		}
		result.Updated++
	}

	uc.logger.Infow("plans seeded", "created", result.Created, "updated", result.Updated)
	return result, nil
}
