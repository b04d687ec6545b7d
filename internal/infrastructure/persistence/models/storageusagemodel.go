package models

import (
	"time"

	"github.com/pecal-inc/pecal/internal/shared/constants"
)

// StorageUsageModel tracks storage consumed per owner
type StorageUsageModel struct {
	ID            uint    `gorm:"primaryKey"`
	OwnerType     string  `gorm:"not null;size:20;uniqueIndex:uk_storage_usages_owner,priority:1"`
	OwnerID       uint    `gorm:"not null;uniqueIndex:uk_storage_usages_owner,priority:2"`
	UsedStorageMB float64 `gorm:"column:used_storage_mb;not null;default:0"`
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (StorageUsageModel) TableName() string {
	return constants.TableStorageUsages
}

// TeamMemberModel maps the team_members table written by the team service.
// This service only reads it.
type TeamMemberModel struct {
	TeamID     uint `gorm:"primaryKey;autoIncrement:false"`
	MemberID   uint `gorm:"primaryKey;autoIncrement:false"`
	TeamRoleID *uint
}

// TableName specifies the table name for GORM
func (TeamMemberModel) TableName() string {
	return constants.TableTeamMembers
}
