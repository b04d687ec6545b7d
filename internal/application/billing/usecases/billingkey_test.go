package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	apperrors "github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

func activeKey() *billingkey.BillingKey {
	return billingkey.ReconstructBillingKey(7, 42, "BIKY-7", "04", "삼성", "949020******0000", billingkey.StatusActive, fixedNow, nil)
}

func TestGetBillingKeyUseCase(t *testing.T) {
	repo := &mockBillingKeyRepository{
		GetActiveByMemberIDFunc: func(ctx context.Context, memberID uint) (*billingkey.BillingKey, error) {
			if memberID == 42 {
				return activeKey(), nil
			}
			return nil, nil
		},
	}
	uc := NewGetBillingKeyUseCase(repo, logger.NewDiscard())

	got, err := uc.Execute(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "949020******0000", got.CardNoMasked)

	none, err := uc.Execute(context.Background(), 43)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRemoveBillingKeyUseCase_GatewayFailureStillRemovesLocally(t *testing.T) {
	var removedID uint
	repo := &mockBillingKeyRepository{
		GetActiveByMemberIDFunc: func(ctx context.Context, memberID uint) (*billingkey.BillingKey, error) {
			return activeKey(), nil
		},
		RemoveByIDFunc: func(ctx context.Context, id uint) error {
			removedID = id
			return nil
		},
	}
	gw := &mockGateway{
		RemoveBillingKeyFunc: func(ctx context.Context, bid, orderID string) error {
			return errors.New("gateway down")
		},
	}

	uc := NewRemoveBillingKeyUseCase(gw, repo, logger.NewDiscard())
	require.NoError(t, uc.Execute(context.Background(), 42))

	assert.Equal(t, []string{"BIKY-7"}, gw.removed)
	assert.Equal(t, uint(7), removedID)
}

func TestRemoveBillingKeyUseCase_NoKey(t *testing.T) {
	uc := NewRemoveBillingKeyUseCase(&mockGateway{}, &mockBillingKeyRepository{}, logger.NewDiscard())

	err := uc.Execute(context.Background(), 42)
	assert.True(t, apperrors.IsNotFoundError(err))
}
