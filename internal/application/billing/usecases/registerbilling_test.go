package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	paymentVO "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	apperrors "github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

var fixedNow = time.Date(2024, 3, 5, 0, 4, 9, 0, time.UTC)

type checkoutFixture struct {
	gateway  *mockGateway
	plans    *mockPlanRepository
	keys     *mockBillingKeyRepository
	subs     *mockSubscriptionRepository
	payments *mockPaymentRepository
	members  *mockMembership
	tx       *mockTxRunner
	alerter  *mockAlerter
	metrics  *metrics.Metrics
}

func newCheckoutFixture() *checkoutFixture {
	return &checkoutFixture{
		gateway: &mockGateway{},
		plans: &mockPlanRepository{
			GetByIDFunc: func(ctx context.Context, id uint) (*plan.Plan, error) {
				if id != 2 {
					return nil, nil
				}
				return plan.ReconstructPlan(2, "Pro", 9900, 10, 10000, nil, nil, fixedNow), nil
			},
		},
		keys:     &mockBillingKeyRepository{},
		subs:     &mockSubscriptionRepository{},
		payments: &mockPaymentRepository{},
		members:  &mockMembership{},
		tx:       &mockTxRunner{},
		alerter:  &mockAlerter{},
		metrics:  metrics.NewNop(),
	}
}

func (f *checkoutFixture) useCase() *RegisterBillingUseCase {
	uc := NewRegisterBillingUseCase(
		f.gateway,
		f.plans,
		f.keys,
		f.subs,
		f.payments,
		common.NewOwnerGuard(f.members),
		f.tx,
		f.alerter,
		f.metrics,
		BillingSettings{GoodsNamePrefix: "Pecal"},
		logger.NewDiscard(),
	)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func validCheckout() RegisterBillingCommand {
	return RegisterBillingCommand{
		MemberID:  42,
		CardNo:    "9490200000000000",
		ExpYear:   "27",
		ExpMonth:  "12",
		IDNo:      "800101",
		CardPw:    "12",
		PlanID:    2,
		OwnerID:   42,
		OwnerType: vo.OwnerTypePersonal,
	}
}

func TestRegisterBillingUseCase_Success(t *testing.T) {
	f := newCheckoutFixture()
	oldKey := billingkey.ReconstructBillingKey(7, 42, "BIKY-OLD", "04", "삼성", "****", billingkey.StatusRemoved, fixedNow, nil)
	f.keys.SaveFunc = func(ctx context.Context, k *billingkey.BillingKey) ([]*billingkey.BillingKey, error) {
		k.SetID(100)
		return []*billingkey.BillingKey{oldKey}, nil
	}

	var created *subscription.Subscription
	f.subs.CreateFunc = func(ctx context.Context, s *subscription.Subscription) error {
		created = s
		return s.SetID(200)
	}

	result, err := f.useCase().Execute(context.Background(), validCheckout())
	require.NoError(t, err)

	assert.Equal(t, uint(200), result.SubscriptionID)
	assert.Equal(t, uint(100), result.BillingKeyID)
	assert.Equal(t, "TID-PECAL_AP_42_1709597049000", result.TID)

	require.NotNil(t, created)
	assert.Equal(t, uint(2), created.PlanID())
	assert.Equal(t, uint(42), created.CreatedBy())

	require.Len(t, f.gateway.approved, 1)
	assert.Equal(t, "BIKY-NEW", f.gateway.approved[0].BID)
	assert.Equal(t, int64(9900), f.gateway.approved[0].Amount)
	assert.Equal(t, "Pecal Pro", f.gateway.approved[0].GoodsName)

	require.Len(t, f.payments.payments, 1)
	pay := f.payments.payments[0]
	assert.Equal(t, paymentVO.PaymentStatusApproved, pay.Status())
	assert.Equal(t, paymentVO.ChargeKindInitial, pay.Kind())
	require.NotNil(t, pay.SubscriptionID())
	assert.Equal(t, uint(200), *pay.SubscriptionID())

	assert.Equal(t, []string{"BIKY-OLD"}, f.gateway.removed)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChargesTotal.WithLabelValues("INITIAL", "approved")))
}

func TestRegisterBillingUseCase_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cmd *RegisterBillingCommand)
	}{
		{"short card number", func(c *RegisterBillingCommand) { c.CardNo = "1234" }},
		{"non numeric card", func(c *RegisterBillingCommand) { c.CardNo = "9490-2000-0000-0000" }},
		{"bad month", func(c *RegisterBillingCommand) { c.ExpMonth = "13" }},
		{"bad year", func(c *RegisterBillingCommand) { c.ExpYear = "2027" }},
		{"bad id", func(c *RegisterBillingCommand) { c.IDNo = "8001" }},
		{"bad password", func(c *RegisterBillingCommand) { c.CardPw = "1" }},
		{"missing plan", func(c *RegisterBillingCommand) { c.PlanID = 0 }},
		{"missing owner", func(c *RegisterBillingCommand) { c.OwnerID = 0 }},
		{"bad owner type", func(c *RegisterBillingCommand) { c.OwnerType = "org" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			cmd := validCheckout()
			tt.mutate(&cmd)

			result, err := f.useCase().Execute(context.Background(), cmd)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsValidationError(err))
			assert.Empty(t, f.gateway.approved)
		})
	}
}

func TestRegisterBillingUseCase_Unauthenticated(t *testing.T) {
	f := newCheckoutFixture()
	cmd := validCheckout()
	cmd.MemberID = 0

	_, err := f.useCase().Execute(context.Background(), cmd)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestRegisterBillingUseCase_PlanNotFound(t *testing.T) {
	f := newCheckoutFixture()
	cmd := validCheckout()
	cmd.PlanID = 99

	_, err := f.useCase().Execute(context.Background(), cmd)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRegisterBillingUseCase_TeamRequiresMembership(t *testing.T) {
	f := newCheckoutFixture()
	cmd := validCheckout()
	cmd.OwnerType = vo.OwnerTypeTeam
	cmd.OwnerID = 5

	_, err := f.useCase().Execute(context.Background(), cmd)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)

	f.members.IsMemberFunc = func(ctx context.Context, teamID, memberID uint) (bool, error) {
		return teamID == 5 && memberID == 42, nil
	}
	result, err := f.useCase().Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, result.TID)
}

func TestRegisterBillingUseCase_RegistrationRejected(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.RegisterBillingKeyFunc = func(ctx context.Context, encData, orderID string) (*gateway.RegisterResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationRegister, ResultCode: "F113", ResultMsg: "카드번호 오류"}
	}
	saved := false
	f.keys.SaveFunc = func(ctx context.Context, k *billingkey.BillingKey) ([]*billingkey.BillingKey, error) {
		saved = true
		return nil, nil
	}

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGateway, appErr.Type)
	assert.Equal(t, "카드번호 오류", appErr.Message)
	assert.False(t, saved)
}

func TestRegisterBillingUseCase_ChargeDeclinedRollsBack(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationApprove, ResultCode: "3011", ResultMsg: "한도초과", TID: "T-DECLINED"}
	}

	result, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsGatewayError(err))
	assert.Contains(t, err.Error(), "한도초과")

	require.Len(t, f.payments.payments, 1)
	pay := f.payments.payments[0]
	assert.Equal(t, paymentVO.PaymentStatusFailed, pay.Status())
	assert.Equal(t, "3011", pay.ResultCode())
	assert.Equal(t, "T-DECLINED", pay.TID())
	assert.Nil(t, pay.SubscriptionID())

	// the unused key is expired at the gateway
	assert.Equal(t, []string{"BIKY-NEW"}, f.gateway.removed)
	assert.Empty(t, f.gateway.cancelled)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChargesTotal.WithLabelValues("INITIAL", "failed")))
}

func TestRegisterBillingUseCase_SubscriptionWriteFailsBeforeCharge(t *testing.T) {
	f := newCheckoutFixture()
	f.subs.CreateFunc = func(ctx context.Context, s *subscription.Subscription) error {
		return errors.New("deadlock")
	}

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
	assert.Empty(t, f.gateway.approved, "no charge may happen when local writes fail")
	assert.Empty(t, f.payments.payments)
}

func TestRegisterBillingUseCase_CommitFailureCancelsCharge(t *testing.T) {
	f := newCheckoutFixture()
	f.tx.CommitErr = errors.New("commit failed")

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)

	require.Len(t, f.gateway.cancelled, 1)
	cancel := f.gateway.cancelled[0]
	assert.Equal(t, "TID-PECAL_AP_42_1709597049000", cancel.TID)
	assert.Equal(t, int64(9900), cancel.Amount)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, paymentVO.PaymentStatusCancelled, f.payments.payments[0].Status())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CompensationsTotal.WithLabelValues("succeeded")))
	assert.Empty(t, f.alerter.subjects)
}

func TestRegisterBillingUseCase_FailedCompensationAlerts(t *testing.T) {
	f := newCheckoutFixture()
	f.tx.CommitErr = errors.New("commit failed")
	f.gateway.CancelApprovalFunc = func(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationCancel, ResultCode: gateway.ResultCodeNetwork, Err: errors.New("timeout")}
	}

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, paymentVO.PaymentStatusApproved, f.payments.payments[0].Status())
	assert.Len(t, f.alerter.subjects, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CompensationsTotal.WithLabelValues("failed")))
}

func approvalTimeout(tid string) error {
	return &gateway.ResultError{
		Operation:  gateway.OperationApprove,
		ResultCode: gateway.ResultCodeNetwork,
		TID:        tid,
		Err:        errors.New("Client.Timeout exceeded while awaiting headers"),
	}
}

func TestRegisterBillingUseCase_ApprovalTimeoutCancelsCharge(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, approvalTimeout("nictest04m01162403050004091234")
	}

	result, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsGatewayError(err))

	require.Len(t, f.gateway.cancelled, 1)
	cancel := f.gateway.cancelled[0]
	assert.Equal(t, "nictest04m01162403050004091234", cancel.TID)
	assert.Equal(t, "PECAL_AP_42_1709597049000", cancel.OrderID)
	assert.Equal(t, int64(9900), cancel.Amount)

	require.Len(t, f.payments.payments, 1)
	pay := f.payments.payments[0]
	assert.Equal(t, paymentVO.PaymentStatusCancelled, pay.Status())
	assert.Equal(t, "nictest04m01162403050004091234", pay.TID())
	assert.Equal(t, "2001", pay.ResultCode())

	assert.Equal(t, []string{"BIKY-NEW"}, f.gateway.removed)
	assert.Empty(t, f.alerter.subjects)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CompensationsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChargesTotal.WithLabelValues("INITIAL", "cancelled")))
}

func TestRegisterBillingUseCase_ApprovalTimeoutCancelFailsAlerts(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, approvalTimeout("nictest04m01162403050004091234")
	}
	f.gateway.CancelApprovalFunc = func(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error) {
		return nil, &gateway.ResultError{Operation: gateway.OperationCancel, ResultCode: "2012", ResultMsg: "취소 불가"}
	}

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayError(err))

	require.Len(t, f.payments.payments, 1)
	pay := f.payments.payments[0]
	assert.Equal(t, paymentVO.PaymentStatusUnknown, pay.Status())
	assert.Equal(t, gateway.ResultCodeNetwork, pay.ResultCode())
	assert.Equal(t, []string{"Checkout charge needs manual review"}, f.alerter.subjects)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CompensationsTotal.WithLabelValues("failed")))
}

func TestRegisterBillingUseCase_NetworkErrorWithoutTIDIsNotCancelled(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.ApproveBillingFunc = func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
		return nil, approvalTimeout("")
	}

	_, err := f.useCase().Execute(context.Background(), validCheckout())
	require.Error(t, err)

	assert.Empty(t, f.gateway.cancelled)
	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, paymentVO.PaymentStatusFailed, f.payments.payments[0].Status())
}
