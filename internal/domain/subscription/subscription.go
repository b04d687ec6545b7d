package subscription

import (
	"fmt"
	"time"

	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
)

// Subscription is one row of the subscription ledger. An owner has at most
// one ACTIVE row at any time.
type Subscription struct {
	id                 uint
	ownerID            uint
	ownerType          vo.OwnerType
	planID             uint
	status             vo.SubscriptionStatus
	startedAt          time.Time
	endedAt            *time.Time
	nextPaymentDate    *time.Time
	createdBy          uint
	billingKeyMemberID uint
	retryCount         int

	// read model, filled when loaded together with the plan
	planName  string
	planPrice int64
}

// NewSubscription creates an ACTIVE subscription starting at now and due one
// month later. createdBy defaults to ownerID; billingKeyMemberID defaults to
// createdBy.
func NewSubscription(ownerID uint, ownerType vo.OwnerType, planID, createdBy, billingKeyMemberID uint, now time.Time) (*Subscription, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if !ownerType.IsValid() {
		return nil, fmt.Errorf("invalid owner type: %s", ownerType)
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if createdBy == 0 {
		createdBy = ownerID
	}
	if billingKeyMemberID == 0 {
		billingKeyMemberID = createdBy
	}

	startedAt := now.UTC().Truncate(time.Second)
	next := biztime.AddMonths(startedAt, 1)

	return &Subscription{
		ownerID:            ownerID,
		ownerType:          ownerType,
		planID:             planID,
		status:             vo.StatusActive,
		startedAt:          startedAt,
		nextPaymentDate:    &next,
		createdBy:          createdBy,
		billingKeyMemberID: billingKeyMemberID,
	}, nil
}

// ReconstructSubscription reconstructs a subscription from persistence
func ReconstructSubscription(
	id, ownerID uint,
	ownerType vo.OwnerType,
	planID uint,
	status vo.SubscriptionStatus,
	startedAt time.Time,
	endedAt, nextPaymentDate *time.Time,
	createdBy, billingKeyMemberID uint,
	retryCount int,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	if !ownerType.IsValid() {
		return nil, fmt.Errorf("invalid owner type: %s", ownerType)
	}

	return &Subscription{
		id:                 id,
		ownerID:            ownerID,
		ownerType:          ownerType,
		planID:             planID,
		status:             status,
		startedAt:          startedAt,
		endedAt:            endedAt,
		nextPaymentDate:    nextPaymentDate,
		createdBy:          createdBy,
		billingKeyMemberID: billingKeyMemberID,
		retryCount:         retryCount,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) OwnerID() uint                 { return s.ownerID }
func (s *Subscription) OwnerType() vo.OwnerType       { return s.ownerType }
func (s *Subscription) PlanID() uint                  { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) StartedAt() time.Time          { return s.startedAt }
func (s *Subscription) EndedAt() *time.Time           { return s.endedAt }
func (s *Subscription) NextPaymentDate() *time.Time   { return s.nextPaymentDate }
func (s *Subscription) CreatedBy() uint               { return s.createdBy }
func (s *Subscription) BillingKeyMemberID() uint      { return s.billingKeyMemberID }
func (s *Subscription) RetryCount() int               { return s.retryCount }
func (s *Subscription) PlanName() string              { return s.planName }
func (s *Subscription) PlanPrice() int64              { return s.planPrice }

// SetID sets the subscription ID after persistence
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// AttachPlan fills the plan read model.
func (s *Subscription) AttachPlan(name string, price int64) {
	s.planName = name
	s.planPrice = price
}

func (s *Subscription) IsActive() bool {
	return s.status == vo.StatusActive
}

// IsDue reports whether the subscription should be charged at now.
func (s *Subscription) IsDue(now time.Time) bool {
	return s.IsActive() && s.nextPaymentDate != nil && !s.nextPaymentDate.After(now)
}

// Cancel ends the subscription at the user's request. Cancelling an already
// canceled subscription is a no-op.
func (s *Subscription) Cancel(at time.Time) error {
	if s.status == vo.StatusCanceled {
		return nil
	}
	return s.end(vo.StatusCanceled, at)
}

// Expire ends the subscription because it was superseded or stopped paying.
func (s *Subscription) Expire(at time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	return s.end(vo.StatusExpired, at)
}

func (s *Subscription) end(target vo.SubscriptionStatus, at time.Time) error {
	if !s.status.CanTransitionTo(target) {
		return ErrInvalidTransition(s.status.String(), target.String())
	}
	endedAt := at.UTC().Truncate(time.Second)
	s.status = target
	s.endedAt = &endedAt
	s.nextPaymentDate = nil
	return nil
}

// Renew moves the next payment date one month forward and clears retries.
func (s *Subscription) Renew() error {
	if !s.IsActive() {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}
	if s.nextPaymentDate == nil {
		return ErrNotScheduled
	}
	next := biztime.AddMonths(*s.nextPaymentDate, 1)
	s.nextPaymentDate = &next
	s.retryCount = 0
	return nil
}

// RecordFailedCharge increments the retry counter and returns the new value.
func (s *Subscription) RecordFailedCharge() int {
	s.retryCount++
	return s.retryCount
}
