// Package entitlement describes what an owner may use under its plan.
package entitlement

import (
	"context"
	"time"

	subVO "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
)

// Limits are the quotas in force for an owner.
type Limits struct {
	PlanID       *uint
	PlanName     string
	MaxMembers   int
	MaxStorageMB int
}

// StorageCheck is the result of a storage quota check.
type StorageCheck struct {
	Allowed   bool
	CurrentMB float64
	LimitMB   int
}

// EvaluateStorage allows the upload when current plus additional stays
// within the limit.
func EvaluateStorage(currentMB, additionalMB float64, limitMB int) StorageCheck {
	return StorageCheck{
		Allowed:   currentMB+additionalMB <= float64(limitMB),
		CurrentMB: currentMB,
		LimitMB:   limitMB,
	}
}

// MemberCheck is the result of a team size check.
type MemberCheck struct {
	Allowed    bool
	Current    int64
	MaxMembers int
}

// EvaluateMembers allows one more member while the team is under its cap.
func EvaluateMembers(current int64, maxMembers int) MemberCheck {
	return MemberCheck{
		Allowed:    current < int64(maxMembers),
		Current:    current,
		MaxMembers: maxMembers,
	}
}

// StorageUsage is how much storage an owner currently occupies.
type StorageUsage struct {
	OwnerType subVO.OwnerType
	OwnerID   uint
	UsedMB    float64
	UpdatedAt time.Time
}

type StorageUsageRepository interface {
	// Get returns zero usage when nothing was recorded.
	Get(ctx context.Context, ownerType subVO.OwnerType, ownerID uint) (*StorageUsage, error)
	Upsert(ctx context.Context, usage *StorageUsage) error
}

// TeamMembership reads the team_members table owned by the team service.
type TeamMembership interface {
	CountMembers(ctx context.Context, teamID uint) (int64, error)
	IsMember(ctx context.Context, teamID, memberID uint) (bool, error)
}
