package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/domain/payment"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
)

type mockGateway struct {
	EncryptCardDataFunc    func(card gateway.CardData) (string, error)
	RegisterBillingKeyFunc func(ctx context.Context, encData, orderID string) (*gateway.RegisterResult, error)
	ApproveBillingFunc     func(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error)
	RemoveBillingKeyFunc   func(ctx context.Context, bid, orderID string) error
	CancelApprovalFunc     func(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error)

	mu        sync.Mutex
	approved  []gateway.ApproveRequest
	removed   []string
	cancelled []gateway.CancelRequest
}

func (m *mockGateway) EncryptCardData(card gateway.CardData) (string, error) {
	if m.EncryptCardDataFunc != nil {
		return m.EncryptCardDataFunc(card)
	}
	return "encrypted", nil
}

func (m *mockGateway) RegisterBillingKey(ctx context.Context, encData, orderID string) (*gateway.RegisterResult, error) {
	if m.RegisterBillingKeyFunc != nil {
		return m.RegisterBillingKeyFunc(ctx, encData, orderID)
	}
	return &gateway.RegisterResult{
		BID:        "BIKY-NEW",
		CardCode:   "04",
		CardName:   "삼성",
		CardNo:     "949020******0000",
		ResultCode: "F100",
	}, nil
}

func (m *mockGateway) ApproveBilling(ctx context.Context, req gateway.ApproveRequest) (*gateway.ApproveResult, error) {
	m.mu.Lock()
	m.approved = append(m.approved, req)
	m.mu.Unlock()
	if m.ApproveBillingFunc != nil {
		return m.ApproveBillingFunc(ctx, req)
	}
	return &gateway.ApproveResult{
		TID:        "TID-" + req.OrderID,
		Amount:     req.Amount,
		ResultCode: "3001",
		ResultMsg:  "ok",
		Raw:        map[string]interface{}{"ResultCode": "3001"},
	}, nil
}

func (m *mockGateway) RemoveBillingKey(ctx context.Context, bid, orderID string) error {
	m.mu.Lock()
	m.removed = append(m.removed, bid)
	m.mu.Unlock()
	if m.RemoveBillingKeyFunc != nil {
		return m.RemoveBillingKeyFunc(ctx, bid, orderID)
	}
	return nil
}

func (m *mockGateway) CancelApproval(ctx context.Context, req gateway.CancelRequest) (*gateway.CancelResult, error) {
	m.mu.Lock()
	m.cancelled = append(m.cancelled, req)
	m.mu.Unlock()
	if m.CancelApprovalFunc != nil {
		return m.CancelApprovalFunc(ctx, req)
	}
	return &gateway.CancelResult{TID: req.TID, ResultCode: "2001", ResultMsg: "cancelled"}, nil
}

type mockPlanRepository struct {
	GetByIDFunc func(ctx context.Context, id uint) (*plan.Plan, error)
}

func (m *mockPlanRepository) Create(ctx context.Context, p *plan.Plan) error { return nil }

func (m *mockPlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPlanRepository) GetByName(ctx context.Context, name string) (*plan.Plan, error) {
	return nil, nil
}

func (m *mockPlanRepository) List(ctx context.Context) ([]*plan.Plan, error) { return nil, nil }

func (m *mockPlanRepository) Update(ctx context.Context, p *plan.Plan) error { return nil }

func (m *mockPlanRepository) Delete(ctx context.Context, id uint) error { return nil }

type mockBillingKeyRepository struct {
	GetActiveByMemberIDFunc func(ctx context.Context, memberID uint) (*billingkey.BillingKey, error)
	SaveFunc                func(ctx context.Context, k *billingkey.BillingKey) ([]*billingkey.BillingKey, error)
	RemoveByIDFunc          func(ctx context.Context, id uint) error
}

func (m *mockBillingKeyRepository) GetActiveByMemberID(ctx context.Context, memberID uint) (*billingkey.BillingKey, error) {
	if m.GetActiveByMemberIDFunc != nil {
		return m.GetActiveByMemberIDFunc(ctx, memberID)
	}
	return nil, nil
}

func (m *mockBillingKeyRepository) GetByID(ctx context.Context, id uint) (*billingkey.BillingKey, error) {
	return nil, nil
}

func (m *mockBillingKeyRepository) Save(ctx context.Context, k *billingkey.BillingKey) ([]*billingkey.BillingKey, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, k)
	}
	k.SetID(100)
	return nil, nil
}

func (m *mockBillingKeyRepository) RemoveByID(ctx context.Context, id uint) error {
	if m.RemoveByIDFunc != nil {
		return m.RemoveByIDFunc(ctx, id)
	}
	return nil
}

type mockSubscriptionRepository struct {
	CreateFunc              func(ctx context.Context, s *subscription.Subscription) error
	GetDueFunc              func(ctx context.Context, now time.Time) ([]*subscription.Subscription, error)
	AdvancePaymentDateFunc  func(ctx context.Context, id uint) error
	IncrementRetryCountFunc func(ctx context.Context, id uint) (int, error)
	UpdateStatusFunc        func(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return s.SetID(200)
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) GetActiveByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) (*subscription.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) ListByOwner(ctx context.Context, ownerID uint, ownerType vo.OwnerType) ([]*subscription.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) Cancel(ctx context.Context, id uint, at time.Time) (bool, error) {
	return true, nil
}

func (m *mockSubscriptionRepository) UpdateStatus(ctx context.Context, id uint, status vo.SubscriptionStatus, at time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, at)
	}
	return nil
}

func (m *mockSubscriptionRepository) GetDue(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	if m.GetDueFunc != nil {
		return m.GetDueFunc(ctx, now)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) AdvancePaymentDate(ctx context.Context, id uint) error {
	if m.AdvancePaymentDateFunc != nil {
		return m.AdvancePaymentDateFunc(ctx, id)
	}
	return nil
}

func (m *mockSubscriptionRepository) IncrementRetryCount(ctx context.Context, id uint) (int, error) {
	if m.IncrementRetryCountFunc != nil {
		return m.IncrementRetryCountFunc(ctx, id)
	}
	return 1, nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, id uint) error { return nil }

type mockPaymentRepository struct {
	mu       sync.Mutex
	payments []*payment.Payment
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.SetID(uint(len(m.payments) + 1))
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error { return nil }

func (m *mockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepository) ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*payment.Payment, error) {
	return nil, nil
}

type mockMembership struct {
	IsMemberFunc func(ctx context.Context, teamID, memberID uint) (bool, error)
}

func (m *mockMembership) CountMembers(ctx context.Context, teamID uint) (int64, error) {
	return 0, nil
}

func (m *mockMembership) IsMember(ctx context.Context, teamID, memberID uint) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(ctx, teamID, memberID)
	}
	return false, nil
}

// mockTxRunner runs fn directly. A non-nil CommitErr simulates a commit
// that fails after fn succeeded.
type mockTxRunner struct {
	CommitErr error
}

func (m *mockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return m.CommitErr
}

type mockLock struct {
	token      string
	acquireErr error
	released   []string
}

func (m *mockLock) TryAcquire(ctx context.Context) (string, error) {
	return m.token, m.acquireErr
}

func (m *mockLock) Release(ctx context.Context, token string) error {
	m.released = append(m.released, token)
	return nil
}

type mockAlerter struct {
	subjects []string
}

func (m *mockAlerter) SendAlert(ctx context.Context, subject, body string) error {
	m.subjects = append(m.subjects, subject)
	return nil
}
