package usecases

import (
	"context"
	"time"

	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
)

type mockSubscriptionRepository struct {
	GetByIDFunc          func(ctx context.Context, id uint) (*subscription.Subscription, error)
	GetActiveByOwnerFunc func(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*subscription.Subscription, error)
	ListByOwnerFunc      func(ctx context.Context, ownerID uint, ownerType vo.OwnerType) ([]*subscription.Subscription, error)
	CancelFunc           func(ctx context.Context, id uint, at time.Time) (bool, error)
	UpdateStatusFunc     func(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error
	DeleteFunc           func(ctx context.Context, id uint) error
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	return nil
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) GetActiveByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*subscription.Subscription, error) {
	if m.GetActiveByOwnerFunc != nil {
		return m.GetActiveByOwnerFunc(ctx, ownerID, ownerType)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) ListByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) ([]*subscription.Subscription, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, ownerType)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, id, at)
	}
	return true, nil
}

func (m *mockSubscriptionRepository) UpdateStatus(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, at)
	}
	return nil
}

func (m *mockSubscriptionRepository) GetDue(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) AdvancePaymentDate(ctx context.Context, id uint) error {
	return nil
}

func (m *mockSubscriptionRepository) IncrementRetryCount(ctx context.Context, id uint) (int, error) {
	return 0, nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockMembership struct {
	teams map[uint][]uint
}

func (m *mockMembership) CountMembers(ctx context.Context, teamID uint) (int64, error) {
	return int64(len(m.teams[teamID])), nil
}

func (m *mockMembership) IsMember(ctx context.Context, teamID, memberID uint) (bool, error) {
	for _, id := range m.teams[teamID] {
		if id == memberID {
			return true, nil
		}
	}
	return false, nil
}
