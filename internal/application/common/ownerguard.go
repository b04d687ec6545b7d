// Package common holds helpers shared by several application services.
package common

import (
	"context"
	"fmt"

	"github.com/pecal-inc/pecal/internal/domain/entitlement"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/errors"
)

// OwnerGuard decides whether a member may act for a subscription owner.
// A personal owner is the member itself; a team owner requires membership.
type OwnerGuard struct {
	membership entitlement.TeamMembership
}

func NewOwnerGuard(membership entitlement.TeamMembership) *OwnerGuard {
	return &OwnerGuard{membership: membership}
}

func (g *OwnerGuard) Authorize(ctx context.Context, memberID, ownerID uint, ownerType vo.OwnerType) error {
	if memberID == 0 {
		return errors.NewUnauthorizedError("authentication required")
	}

	switch ownerType {
	case vo.OwnerTypePersonal:
		if ownerID != memberID {
			return errors.NewForbiddenError("cannot act for another member")
		}
		return nil
	case vo.OwnerTypeTeam:
		ok, err := g.membership.IsMember(ctx, ownerID, memberID)
		if err != nil {
			return fmt.Errorf("failed to check team membership: %w", err)
		}
		if !ok {
			return errors.NewForbiddenError("not a member of this team")
		}
		return nil
	default:
		return errors.NewValidationError("invalid owner type", string(ownerType))
	}
}
