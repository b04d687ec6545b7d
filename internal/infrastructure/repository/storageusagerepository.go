package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pecal-inc/pecal/internal/domain/entitlement"
	subVO "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
	"github.com/pecal-inc/pecal/internal/shared/db"
)

type StorageUsageRepository struct {
	db *gorm.DB
}

func NewStorageUsageRepository(db *gorm.DB) *StorageUsageRepository {
	return &StorageUsageRepository{db: db}
}

func (r *StorageUsageRepository) Get(ctx context.Context, ownerType subVO.OwnerType, ownerID uint) (*entitlement.StorageUsage, error) {
	var model models.StorageUsageModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_type = ? AND owner_id = ?", ownerType.String(), ownerID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entitlement.StorageUsage{OwnerType: ownerType, OwnerID: ownerID}, nil
		}
		return nil, fmt.Errorf("failed to get storage usage: %w", err)
	}

	return &entitlement.StorageUsage{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		UsedMB:    model.UsedStorageMB,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func (r *StorageUsageRepository) Upsert(ctx context.Context, usage *entitlement.StorageUsage) error {
	model := &models.StorageUsageModel{
		OwnerType:     usage.OwnerType.String(),
		OwnerID:       usage.OwnerID,
		UsedStorageMB: usage.UsedMB,
		UpdatedAt:     usage.UpdatedAt,
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_type"}, {Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"used_storage_mb", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert storage usage: %w", err)
	}
	return nil
}

// TeamMembershipRepository reads team_members rows.
type TeamMembershipRepository struct {
	db *gorm.DB
}

func NewTeamMembershipRepository(db *gorm.DB) *TeamMembershipRepository {
	return &TeamMembershipRepository{db: db}
}

func (r *TeamMembershipRepository) CountMembers(ctx context.Context, teamID uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TeamMemberModel{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

func (r *TeamMembershipRepository) IsMember(ctx context.Context, teamID, memberID uint) (bool, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TeamMemberModel{}).
		Where("team_id = ? AND member_id = ?", teamID, memberID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return count > 0, nil
}
