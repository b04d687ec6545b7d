package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pecal-inc/pecal/internal/application/plan/dto"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type ListPlansUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo plan.Repository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, logger: logger}
}

// Execute returns every plan, cheapest first.
func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]*dto.PlanDTO, error) {
	plans, err := uc.planRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return dto.ToPlanDTOList(plans), nil
}

type GetPlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewGetPlanUseCase(planRepo plan.Repository, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, planID uint) (*dto.PlanDTO, error) {
	p, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "plan_id", planID, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("plan not found")
	}
	return dto.ToPlanDTO(p), nil
}

type CreatePlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo plan.Repository, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, req dto.PlanRequest) (*dto.PlanDTO, error) {
	p, err := plan.NewPlan(req.Name, req.Price, req.MaxMembers, req.MaxStorageMB)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	p.SetPayPalIDs(req.PayPalPlanID, req.PayPalProductID)

	if err := uc.planRepo.Create(ctx, p); err != nil {
		if stderrors.Is(err, plan.ErrNameExists) {
			return nil, errors.NewConflictError("plan name already exists", req.Name)
		}
		uc.logger.Errorw("failed to create plan", "name", req.Name, "error", err)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.logger.Infow("plan created", "plan_id", p.ID(), "name", p.Name(), "price", p.Price())
	return dto.ToPlanDTO(p), nil
}

type UpdatePlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewUpdatePlanUseCase(planRepo plan.Repository, logger logger.Interface) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, planID uint, req dto.PlanRequest) (*dto.PlanDTO, error) {
	p, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "plan_id", planID, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("plan not found")
	}

	if err := p.Update(req.Name, req.Price, req.MaxMembers, req.MaxStorageMB); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	p.SetPayPalIDs(req.PayPalPlanID, req.PayPalProductID)

	if err := uc.planRepo.Update(ctx, p); err != nil {
		switch {
		case stderrors.Is(err, plan.ErrNameExists):
			return nil, errors.NewConflictError("plan name already exists", req.Name)
		case stderrors.Is(err, plan.ErrPlanNotFound):
			return nil, errors.NewNotFoundError("plan not found")
		}
		uc.logger.Errorw("failed to update plan", "plan_id", planID, "error", err)
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	uc.logger.Infow("plan updated", "plan_id", planID)
	return dto.ToPlanDTO(p), nil
}

type DeletePlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewDeletePlanUseCase(planRepo plan.Repository, logger logger.Interface) *DeletePlanUseCase {
	return &DeletePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *DeletePlanUseCase) Execute(ctx context.Context, planID uint) error {
	if err := uc.planRepo.Delete(ctx, planID); err != nil {
		if stderrors.Is(err, plan.ErrPlanNotFound) {
			return errors.NewNotFoundError("plan not found")
		}
		uc.logger.Errorw("failed to delete plan", "plan_id", planID, "error", err)
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	uc.logger.Infow("plan deleted", "plan_id", planID)
	return nil
}
