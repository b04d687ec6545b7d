package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/application/entitlement/dto"
	"github.com/pecal-inc/pecal/internal/domain/entitlement"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// FreePlanLimits apply to owners without an active subscription.
type FreePlanLimits struct {
	MaxMembers   int
	MaxStorageMB int
}

// LimitsResolver finds the quotas of an owner from its active subscription.
type LimitsResolver struct {
	subscriptionRepo subscription.Repository
	planRepo         plan.Repository
	free             FreePlanLimits
}

func NewLimitsResolver(subscriptionRepo subscription.Repository, planRepo plan.Repository, free FreePlanLimits) *LimitsResolver {
	return &LimitsResolver{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		free:             free,
	}
}

func (r *LimitsResolver) Resolve(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*entitlement.Limits, error) {
	sub, err := r.subscriptionRepo.GetActiveByOwner(ctx, ownerID, ownerType)
	if err != nil {
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub == nil {
		return r.freeLimits(), nil
	}

	p, err := r.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if p == nil {
		return r.freeLimits(), nil
	}

	id := p.ID()
	return &entitlement.Limits{
		PlanID:       &id,
		PlanName:     p.Name(),
		MaxMembers:   p.MaxMembers(),
		MaxStorageMB: p.MaxStorageMB(),
	}, nil
}

func (r *LimitsResolver) freeLimits() *entitlement.Limits {
	return &entitlement.Limits{
		PlanName:     "Free",
		MaxMembers:   r.free.MaxMembers,
		MaxStorageMB: r.free.MaxStorageMB,
	}
}

type OwnerQuery struct {
	MemberID  uint
	OwnerID   uint
	OwnerType vo.OwnerType
}

func (q OwnerQuery) validate() error {
	if q.OwnerID == 0 {
		return errors.NewValidationError("owner_id is required")
	}
	if !q.OwnerType.IsValid() {
		return errors.NewValidationError("owner_type must be team or personal")
	}
	return nil
}

type GetLimitsUseCase struct {
	resolver *LimitsResolver
	guard    *common.OwnerGuard
	logger   logger.Interface
}

func NewGetLimitsUseCase(resolver *LimitsResolver, guard *common.OwnerGuard, logger logger.Interface) *GetLimitsUseCase {
	return &GetLimitsUseCase{resolver: resolver, guard: guard, logger: logger}
}

func (uc *GetLimitsUseCase) Execute(ctx context.Context, query OwnerQuery) (*dto.LimitsDTO, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, query.MemberID, query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}

	limits, err := uc.resolver.Resolve(ctx, query.OwnerID, query.OwnerType)
	if err != nil {
		uc.logger.Errorw("failed to resolve limits", "owner_id", query.OwnerID, "owner_type", query.OwnerType, "error", err)
		return nil, err
	}

	return &dto.LimitsDTO{
		OwnerType:    query.OwnerType.String(),
		OwnerID:      query.OwnerID,
		PlanID:       limits.PlanID,
		PlanName:     limits.PlanName,
		MaxMembers:   limits.MaxMembers,
		MaxStorageMB: limits.MaxStorageMB,
	}, nil
}

type CheckStorageQuery struct {
	OwnerQuery
	AdditionalMB float64
	// Enforce turns a denied check into a StorageLimitError.
	Enforce bool
}

type CheckStorageUseCase struct {
	resolver  *LimitsResolver
	usageRepo entitlement.StorageUsageRepository
	guard     *common.OwnerGuard
	logger    logger.Interface
}

func NewCheckStorageUseCase(
	resolver *LimitsResolver,
	usageRepo entitlement.StorageUsageRepository,
	guard *common.OwnerGuard,
	logger logger.Interface,
) *CheckStorageUseCase {
	return &CheckStorageUseCase{resolver: resolver, usageRepo: usageRepo, guard: guard, logger: logger}
}

func (uc *CheckStorageUseCase) Execute(ctx context.Context, query CheckStorageQuery) (*dto.StorageCheckDTO, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}
	if query.AdditionalMB < 0 {
		return nil, errors.NewValidationError("additional_mb cannot be negative")
	}
	if err := uc.guard.Authorize(ctx, query.MemberID, query.OwnerID, query.OwnerType); err != nil {
		return nil, err
	}

	limits, err := uc.resolver.Resolve(ctx, query.OwnerID, query.OwnerType)
	if err != nil {
		uc.logger.Errorw("failed to resolve limits", "owner_id", query.OwnerID, "error", err)
		return nil, err
	}

	usage, err := uc.usageRepo.Get(ctx, query.OwnerType, query.OwnerID)
	if err != nil {
		uc.logger.Errorw("failed to get storage usage", "owner_id", query.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to get storage usage: %w", err)
	}

	check := entitlement.EvaluateStorage(usage.UsedMB, query.AdditionalMB, limits.MaxStorageMB)
	if query.Enforce && !check.Allowed {
		return nil, errors.NewStorageLimitError(
			fmt.Sprintf("storage limit of %d MB exceeded", check.LimitMB),
		)
	}

	return &dto.StorageCheckDTO{
		Allowed:   check.Allowed,
		CurrentMB: check.CurrentMB,
		LimitMB:   check.LimitMB,
	}, nil
}

// CheckMembersUseCase fails with MemberLimitError when the team is full.
type CheckMembersUseCase struct {
	resolver   *LimitsResolver
	membership entitlement.TeamMembership
	guard      *common.OwnerGuard
	logger     logger.Interface
}

func NewCheckMembersUseCase(
	resolver *LimitsResolver,
	membership entitlement.TeamMembership,
	guard *common.OwnerGuard,
	logger logger.Interface,
) *CheckMembersUseCase {
	return &CheckMembersUseCase{resolver: resolver, membership: membership, guard: guard, logger: logger}
}

func (uc *CheckMembersUseCase) Execute(ctx context.Context, memberID, teamID uint) (*dto.MemberCheckDTO, error) {
	if teamID == 0 {
		return nil, errors.NewValidationError("team_id is required")
	}
	if err := uc.guard.Authorize(ctx, memberID, teamID, vo.OwnerTypeTeam); err != nil {
		return nil, err
	}

	limits, err := uc.resolver.Resolve(ctx, teamID, vo.OwnerTypeTeam)
	if err != nil {
		uc.logger.Errorw("failed to resolve limits", "team_id", teamID, "error", err)
		return nil, err
	}

	count, err := uc.membership.CountMembers(ctx, teamID)
	if err != nil {
		uc.logger.Errorw("failed to count team members", "team_id", teamID, "error", err)
		return nil, fmt.Errorf("failed to count team members: %w", err)
	}

	check := entitlement.EvaluateMembers(count, limits.MaxMembers)
	if !check.Allowed {
		return nil, errors.NewMemberLimitError(
			fmt.Sprintf("team member limit of %d reached", check.MaxMembers),
		)
	}

	return &dto.MemberCheckDTO{
		Allowed:    check.Allowed,
		Current:    check.Current,
		MaxMembers: check.MaxMembers,
	}, nil
}

type SetStorageUsageCommand struct {
	OwnerQuery
	UsedMB float64
}

type SetStorageUsageUseCase struct {
	usageRepo entitlement.StorageUsageRepository
	guard     *common.OwnerGuard
	logger    logger.Interface
	now       func() time.Time
}

func NewSetStorageUsageUseCase(usageRepo entitlement.StorageUsageRepository, guard *common.OwnerGuard, logger logger.Interface) *SetStorageUsageUseCase {
	return &SetStorageUsageUseCase{usageRepo: usageRepo, guard: guard, logger: logger, now: biztime.NowUTC}
}

func (uc *SetStorageUsageUseCase) Execute(ctx context.Context, cmd SetStorageUsageCommand) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	if cmd.UsedMB < 0 {
		return errors.NewValidationError("used_mb cannot be negative")
	}
	if err := uc.guard.Authorize(ctx, cmd.MemberID, cmd.OwnerID, cmd.OwnerType); err != nil {
		return err
	}

	usage := &entitlement.StorageUsage{
		OwnerType: cmd.OwnerType,
		OwnerID:   cmd.OwnerID,
		UsedMB:    cmd.UsedMB,
		UpdatedAt: uc.now(),
	}
	if err := uc.usageRepo.Upsert(ctx, usage); err != nil {
		uc.logger.Errorw("failed to save storage usage", "owner_id", cmd.OwnerID, "error", err)
		return fmt.Errorf("failed to save storage usage: %w", err)
	}
	return nil
}
