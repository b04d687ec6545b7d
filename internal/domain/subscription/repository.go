package subscription

import (
	"context"
	"time"

	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
)

// Repository is the subscription ledger.
type Repository interface {
	// Create expires every ACTIVE subscription of the same owner and inserts
	// s, atomically. s receives its ID.
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	// GetActiveByOwner returns nil when the owner has no ACTIVE subscription.
	GetActiveByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*Subscription, error)
	// ListByOwner returns every subscription of the owner, newest first,
	// with plan name and price attached.
	ListByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) ([]*Subscription, error)
	// Cancel marks the subscription CANCELED and reports whether a row matched.
	Cancel(ctx context.Context, id uint, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error
	// GetDue returns ACTIVE subscriptions whose next payment date is at or
	// before now, oldest due first.
	GetDue(ctx context.Context, now time.Time) ([]*Subscription, error)
	// AdvancePaymentDate moves the next payment date one month forward and
	// resets the retry counter.
	AdvancePaymentDate(ctx context.Context, id uint) error
	// IncrementRetryCount returns the new retry count.
	IncrementRetryCount(ctx context.Context, id uint) (int, error)
	Delete(ctx context.Context, id uint) error
}
