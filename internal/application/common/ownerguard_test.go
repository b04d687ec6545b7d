package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	apperrors "github.com/pecal-inc/pecal/internal/shared/errors"
)

type stubMembership struct {
	members map[uint][]uint
	err     error
}

func (s *stubMembership) CountMembers(ctx context.Context, teamID uint) (int64, error) {
	return int64(len(s.members[teamID])), s.err
}

func (s *stubMembership) IsMember(ctx context.Context, teamID, memberID uint) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, id := range s.members[teamID] {
		if id == memberID {
			return true, nil
		}
	}
	return false, nil
}

func TestOwnerGuard_Authorize(t *testing.T) {
	guard := NewOwnerGuard(&stubMembership{members: map[uint][]uint{10: {1, 2}}})
	ctx := context.Background()

	tests := []struct {
		name      string
		memberID  uint
		ownerID   uint
		ownerType vo.OwnerType
		errType   apperrors.ErrorType
	}{
		{"personal self", 1, 1, vo.OwnerTypePersonal, ""},
		{"personal other", 1, 2, vo.OwnerTypePersonal, apperrors.ErrorTypeForbidden},
		{"team member", 2, 10, vo.OwnerTypeTeam, ""},
		{"team outsider", 3, 10, vo.OwnerTypeTeam, apperrors.ErrorTypeForbidden},
		{"anonymous", 0, 1, vo.OwnerTypePersonal, apperrors.ErrorTypeUnauthorized},
		{"bad owner type", 1, 1, vo.OwnerType("org"), apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Authorize(ctx, tt.memberID, tt.ownerID, tt.ownerType)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.errType, appErr.Type)
		})
	}
}

func TestOwnerGuard_MembershipError(t *testing.T) {
	guard := NewOwnerGuard(&stubMembership{err: errors.New("db down")})

	err := guard.Authorize(context.Background(), 1, 10, vo.OwnerTypeTeam)
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err))
}
