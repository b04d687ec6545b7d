package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
)

func TestNewSubscription(t *testing.T) {
	now := time.Date(2024, time.January, 31, 1, 0, 0, 0, time.UTC)

	t.Run("defaults creator and billing member to owner", func(t *testing.T) {
		s, err := NewSubscription(42, vo.OwnerTypePersonal, 2, 0, 0, now)
		require.NoError(t, err)

		assert.Equal(t, vo.StatusActive, s.Status())
		assert.Equal(t, uint(42), s.CreatedBy())
		assert.Equal(t, uint(42), s.BillingKeyMemberID())
		assert.Equal(t, 0, s.RetryCount())
		assert.Nil(t, s.EndedAt())
		require.NotNil(t, s.NextPaymentDate())
		assert.Equal(t, biztime.AddMonths(now, 1), *s.NextPaymentDate())
	})

	t.Run("billing member defaults to creator", func(t *testing.T) {
		s, err := NewSubscription(9, vo.OwnerTypeTeam, 3, 5, 0, now)
		require.NoError(t, err)
		assert.Equal(t, uint(5), s.CreatedBy())
		assert.Equal(t, uint(5), s.BillingKeyMemberID())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewSubscription(0, vo.OwnerTypeTeam, 3, 0, 0, now)
		assert.Error(t, err)
		_, err = NewSubscription(1, vo.OwnerType("org"), 3, 0, 0, now)
		assert.Error(t, err)
		_, err = NewSubscription(1, vo.OwnerTypeTeam, 0, 0, 0, now)
		assert.Error(t, err)
	})
}

func TestSubscription_Lifecycle(t *testing.T) {
	now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("cancel is terminal and idempotent", func(t *testing.T) {
		s, _ := NewSubscription(1, vo.OwnerTypePersonal, 1, 0, 0, now)
		require.NoError(t, s.Cancel(now))
		require.NoError(t, s.Cancel(now))

		assert.Equal(t, vo.StatusCanceled, s.Status())
		assert.Nil(t, s.NextPaymentDate())
		assert.NotNil(t, s.EndedAt())

		err := s.Expire(now)
		assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
	})

	t.Run("renew advances from previous due date and clears retries", func(t *testing.T) {
		s, _ := NewSubscription(1, vo.OwnerTypePersonal, 1, 0, 0, now)
		due := *s.NextPaymentDate()
		s.RecordFailedCharge()
		assert.Equal(t, 2, s.RecordFailedCharge())

		require.NoError(t, s.Renew())
		assert.Equal(t, biztime.AddMonths(due, 1), *s.NextPaymentDate())
		assert.Equal(t, 0, s.RetryCount())
	})

	t.Run("renew rejected after expiry", func(t *testing.T) {
		s, _ := NewSubscription(1, vo.OwnerTypePersonal, 1, 0, 0, now)
		require.NoError(t, s.Expire(now))
		assert.Error(t, s.Renew())
	})
}

func TestSubscription_IsDue(t *testing.T) {
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	s, _ := NewSubscription(1, vo.OwnerTypePersonal, 1, 0, 0, start)
	due := *s.NextPaymentDate()

	assert.False(t, s.IsDue(due.Add(-time.Second)))
	assert.True(t, s.IsDue(due))
	assert.True(t, s.IsDue(due.Add(time.Hour)))

	require.NoError(t, s.Cancel(due))
	assert.False(t, s.IsDue(due.Add(time.Hour)))
}
