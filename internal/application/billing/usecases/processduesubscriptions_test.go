package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	paymentVO "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

func dueSubscription(id, memberID uint, retries int) *subscription.Subscription {
	started := fixedNow.AddDate(0, -1, -1)
	next := fixedNow.Add(-24 * time.Hour)
	s, err := subscription.ReconstructSubscription(
		id, memberID, vo.OwnerTypePersonal, 2, vo.StatusActive,
		started, nil, &next, memberID, memberID, retries,
	)
	if err != nil {
		panic(err)
	}
	return s
}

type chargeFixture struct {
	gateway  *mockGateway
	subs     *mockSubscriptionRepository
	keys     *mockBillingKeyRepository
	payments *mockPaymentRepository
	lock     *mockLock
	alerter  *mockAlerter
	metrics  *metrics.Metrics
	settings BillingSettings

	advanced []uint
	retried  map[uint]int
	expired  []uint
}

func newChargeFixture(due ...*subscription.Subscription) *chargeFixture {
	f := &chargeFixture{
		gateway:  &mockGateway{},
		payments: &mockPaymentRepository{},
		lock:     &mockLock{token: "tok"},
		alerter:  &mockAlerter{},
		metrics:  metrics.NewNop(),
		retried:  map[uint]int{},
	}
	f.subs = &mockSubscriptionRepository{
		GetDueFunc: func(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
			return due, nil
		},
		AdvancePaymentDateFunc: func(ctx context.Context, id uint) error {
			f.advanced = append(f.advanced, id)
			return nil
		},
		IncrementRetryCountFunc: func(ctx context.Context, id uint) (int, error) {
			for _, s := range due {
				if s.ID() == id && f.retried[id] == 0 {
					f.retried[id] = s.RetryCount()
				}
			}
			f.retried[id]++
			return f.retried[id], nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error {
			if status == vo.StatusExpired {
				f.expired = append(f.expired, id)
			}
			return nil
		},
	}
	f.keys = &mockBillingKeyRepository{
		GetActiveByMemberIDFunc: func(ctx context.Context, memberID uint) (*billingkey.BillingKey, error) {
			if memberID == 0 || memberID >= 900 {
				return nil, nil
			}
			return billingkey.ReconstructBillingKey(memberID, memberID, fmt.Sprintf("BID-%d", memberID), "04", "삼성", "****", billingkey.StatusActive, fixedNow, nil), nil
		},
	}
	return f
}

func (f *chargeFixture) useCase() *ProcessDueSubscriptionsUseCase {
	plans := &mockPlanRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*plan.Plan, error) {
			return plan.ReconstructPlan(id, "Pro", 9900, 10, 10000, nil, nil, fixedNow), nil
		},
	}
	uc := NewProcessDueSubscriptionsUseCase(
		f.gateway, f.subs, plans, f.keys, f.payments,
		f.lock, f.alerter, f.metrics, f.settings, logger.NewDiscard(),
	)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestProcessDueSubscriptions_RenewsAll(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0), dueSubscription(2, 2, 2))

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, renewed)
	assert.Equal(t, []uint{1, 2}, f.advanced)
	assert.Empty(t, f.retried)
	require.Len(t, f.gateway.approved, 2)
	assert.Equal(t, "PECAL_RC_1_1709597049000", f.gateway.approved[0].OrderID)
	assert.Equal(t, "PECAL_RC_2_1709597049000", f.gateway.approved[1].OrderID)

	require.Len(t, f.payments.payments, 2)
	for _, p := range f.payments.payments {
		assert.Equal(t, paymentVO.PaymentStatusApproved, p.Status())
		assert.Equal(t, paymentVO.ChargeKindRecurring, p.Kind())
	}
	assert.Equal(t, []string{"tok"}, f.lock.released)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.DueSubscriptions))
}

func TestProcessDueSubscriptions_FailureIncrementsRetryAndContinues(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0), dueSubscription(2, 2, 0))
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		if req.OrderID == "PECAL_RC_1_1709597049000" {
			return nil, &gateway.ResultError{Operation: gateway.OperationApprove, ResultCode: "3011", ResultMsg: "한도초과"}
		}
		return &gateway.ApproveResult{TID: "T2", ResultCode: "3001"}, nil
	}

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, renewed)
	assert.Equal(t, map[uint]int{1: 1}, f.retried)
	assert.Equal(t, []uint{2}, f.advanced)
	assert.Empty(t, f.expired, "cutoff is disabled by default")

	require.Len(t, f.payments.payments, 2)
	assert.Equal(t, paymentVO.PaymentStatusFailed, f.payments.payments[0].Status())
	assert.Equal(t, "3011", f.payments.payments[0].ResultCode())
}

func TestProcessDueSubscriptions_MissingBillingKeyCountsAsFailure(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 901, 0))

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, renewed)
	assert.Empty(t, f.gateway.approved)
	assert.Equal(t, map[uint]int{1: 1}, f.retried)
}

func TestProcessDueSubscriptions_RetryCutoffExpires(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 2), dueSubscription(2, 2, 0))
	f.settings = BillingSettings{MaxRetryCount: 3}
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationApprove, ResultCode: "3011", ResultMsg: "한도초과"}
	}

	_, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, f.retried[1])
	assert.Equal(t, 1, f.retried[2])
	assert.Equal(t, []uint{1}, f.expired)
	assert.Len(t, f.alerter.subjects, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SubscriptionsExpired))
}

func TestProcessDueSubscriptions_SkipsWhenLocked(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0))
	f.lock.token = ""

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, renewed)
	assert.Empty(t, f.gateway.approved)
	assert.Empty(t, f.lock.released)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChargeRunsSkipped))
}

func TestProcessDueSubscriptions_LockError(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0))
	f.lock.acquireErr = errors.New("redis down")

	_, err := f.useCase().Execute(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.gateway.approved)
}

func TestProcessDueSubscriptions_AdvanceFailureAlerts(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0))
	f.subs.AdvancePaymentDateFunc = func(ctx context.Context, id uint) error {
		return errors.New("connection reset")
	}

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, renewed)
	assert.Len(t, f.alerter.subjects, 1)
	assert.Empty(t, f.retried, "an approved charge must not count as a failed attempt")
}

func TestProcessDueSubscriptions_NothingDue(t *testing.T) {
	f := newChargeFixture()

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, renewed)
	assert.Equal(t, []string{"tok"}, f.lock.released)
}

func TestProcessDueSubscriptions_ApprovalTimeoutCancelsAndRetries(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0))
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, approvalTimeout("nictest04m01162403050004091234")
	}

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, renewed)
	require.Len(t, f.gateway.cancelled, 1)
	assert.Equal(t, "nictest04m01162403050004091234", f.gateway.cancelled[0].TID)
	assert.Equal(t, "PECAL_RC_1_1709597049000", f.gateway.cancelled[0].OrderID)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, paymentVO.PaymentStatusCancelled, f.payments.payments[0].Status())
	assert.Equal(t, map[uint]int{1: 1}, f.retried)
	assert.Empty(t, f.advanced)
	assert.Empty(t, f.alerter.subjects)
}

func TestProcessDueSubscriptions_UncancelledTimeoutIsNotChargedAgain(t *testing.T) {
	f := newChargeFixture(dueSubscription(1, 1, 0))
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, approvalTimeout("nictest04m01162403050004091234")
	}
	f.gateway.CancelApprovalFunc = func(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationCancel, ResultCode: gateway.ResultCodeNetwork, Err: errors.New("connection refused")}
	}

	renewed, err := f.useCase().Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, renewed)
	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, paymentVO.PaymentStatusUnknown, f.payments.payments[0].Status())
	assert.Equal(t, []uint{1}, f.advanced, "the next run must not charge the card again")
	assert.Empty(t, f.retried)
	assert.Equal(t, []string{"Recurring charge needs manual review"}, f.alerter.subjects)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CompensationsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChargesTotal.WithLabelValues("RECURRING", "unknown")))
}
