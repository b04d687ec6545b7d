package usecases

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/application/common"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/domain/payment"
	paymentVO "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/id"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

var (
	cardNoPattern   = regexp.MustCompile(`^\d{14,16}$`)
	expYearPattern  = regexp.MustCompile(`^\d{2}$`)
	expMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	idNoPattern     = regexp.MustCompile(`^(\d{6}|\d{10})$`)
	cardPwPattern   = regexp.MustCompile(`^\d{2}$`)
)

type RegisterBillingCommand struct {
	MemberID  uint
	CardNo    string
	ExpYear   string
	ExpMonth  string
	IDNo      string
	CardPw    string
	PlanID    uint
	OwnerID   uint
	OwnerType vo.OwnerType
}

type RegisterBillingResult struct {
	TID            string
	SubscriptionID uint
	BillingKeyID   uint
}

// RegisterBillingUseCase is the checkout: it registers the card, then saves
// the key, opens the subscription and approves the first charge in one
// transaction with the approval last.
type RegisterBillingUseCase struct {
	gateway          gateway.BillingGateway
	planRepo         plan.Repository
	billingKeyRepo   billingkey.Repository
	subscriptionRepo subscription.Repository
	paymentRepo      payment.Repository
	guard            *common.OwnerGuard
	txMgr            TransactionRunner
	alerter          Alerter
	metrics          *metrics.Metrics
	settings         BillingSettings
	logger           logger.Interface
	now              func() time.Time
}

func NewRegisterBillingUseCase(
	gw gateway.BillingGateway,
	planRepo plan.Repository,
	billingKeyRepo billingkey.Repository,
	subscriptionRepo subscription.Repository,
	paymentRepo payment.Repository,
	guard *common.OwnerGuard,
	txMgr TransactionRunner,
	alerter Alerter,
	m *metrics.Metrics,
	settings BillingSettings,
	logger logger.Interface,
) *RegisterBillingUseCase {
	return &RegisterBillingUseCase{
		gateway:          gw,
		planRepo:         planRepo,
		billingKeyRepo:   billingKeyRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		guard:            guard,
		txMgr:            txMgr,
		alerter:          alerter,
		metrics:          m,
		settings:         settings,
		logger:           logger,
		now:              biztime.NowUTC,
	}
}

func (uc *RegisterBillingUseCase) Execute(ctx context.Context, cmd RegisterBillingCommand) (*RegisterBillingResult, error) {
	if cmd.MemberID == 0 {
		return nil, errors.NewUnauthorizedError("authentication required")
	}
	if err := uc.validate(cmd); err != nil {
		return nil, err
	}

	p, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "plan_id", cmd.PlanID, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("plan not found")
	}
	if p.Price() <= 0 {
		return nil, errors.NewValidationError("plan is free and needs no billing")
	}

	if err := uc.guard.Authorize(ctx, cmd.MemberID, cmd.OwnerID, cmd.OwnerType); err != nil {
		return nil, err
	}

	encData, err := uc.gateway.EncryptCardData(gateway.CardData{
		CardNo:   cmd.CardNo,
		ExpYear:  cmd.ExpYear,
		ExpMonth: cmd.ExpMonth,
		IDNo:     cmd.IDNo,
		CardPw:   cmd.CardPw,
	})
	if err != nil {
		uc.logger.Errorw("failed to encrypt card data", "member_id", cmd.MemberID, "error", err)
		return nil, errors.NewInternalError("failed to prepare card data")
	}

	now := uc.now()
	reg, err := uc.gateway.RegisterBillingKey(ctx, encData, id.NewOrderID(id.PrefixBillingKey, cmd.MemberID, now))
	if err != nil {
		uc.logger.Warnw("billing key registration rejected", "member_id", cmd.MemberID, "error", err)
		return nil, toGatewayError(err)
	}

	cardNoMasked := reg.CardNo
	if cardNoMasked == "" {
		cardNoMasked = utils.MaskCardNumber(cmd.CardNo)
	}
	key, err := billingkey.NewBillingKey(cmd.MemberID, reg.BID, reg.CardCode, reg.CardName, cardNoMasked)
	if err != nil {
		return nil, errors.NewGatewayError("gateway returned an invalid billing key")
	}

	sub, err := subscription.NewSubscription(cmd.OwnerID, cmd.OwnerType, p.ID(), cmd.MemberID, cmd.MemberID, now)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	orderID := id.NewOrderID(id.PrefixApprove, cmd.MemberID, now)
	pay, err := payment.NewPayment(orderID, cmd.MemberID, p.Price(), uc.settings.goodsName(p.Name()), paymentVO.ChargeKindInitial)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	var (
		retired   []*billingkey.BillingKey
		approved  *gateway.ApproveResult
		chargeErr error
	)
	txErr := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		retired, err = uc.billingKeyRepo.Save(txCtx, key)
		if err != nil {
			return fmt.Errorf("failed to save billing key: %w", err)
		}

		if err := uc.subscriptionRepo.Create(txCtx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		approved, chargeErr = uc.gateway.ApproveBilling(ctx, gateway.ApproveRequest{
			BID:       key.BID(),
			OrderID:   orderID,
			Amount:    p.Price(),
			GoodsName: pay.GoodsName(),
		})
		return chargeErr
	})

	if txErr != nil {
		return nil, uc.handleFailedCheckout(ctx, cmd, key, pay, approved, chargeErr, txErr)
	}

	pay.SetSubscriptionID(sub.ID())
	pay.MarkApproved(approved.TID, approved.ResultCode, approved.ResultMsg, approved.Raw)
	if err := uc.paymentRepo.Create(ctx, pay); err != nil {
		uc.logger.Errorw("failed to record approved payment",
			"order_id", orderID,
			"tid", approved.TID,
			"error", err,
		)
	}
	uc.metrics.RecordCharge(string(paymentVO.ChargeKindInitial), "approved")

	for _, old := range retired {
		uc.removeAtGateway(ctx, old)
	}

	uc.logger.Infow("checkout completed",
		"member_id", cmd.MemberID,
		"owner_id", cmd.OwnerID,
		"owner_type", cmd.OwnerType,
		"plan_id", p.ID(),
		"subscription_id", sub.ID(),
		"tid", approved.TID,
	)

	return &RegisterBillingResult{
		TID:            approved.TID,
		SubscriptionID: sub.ID(),
		BillingKeyID:   key.ID(),
	}, nil
}

func (uc *RegisterBillingUseCase) validate(cmd RegisterBillingCommand) error {
	switch {
	case !cardNoPattern.MatchString(cmd.CardNo):
		return errors.NewValidationError("invalid card number")
	case !expYearPattern.MatchString(cmd.ExpYear):
		return errors.NewValidationError("invalid expiry year")
	case !expMonthPattern.MatchString(cmd.ExpMonth):
		return errors.NewValidationError("invalid expiry month")
	case !idNoPattern.MatchString(cmd.IDNo):
		return errors.NewValidationError("invalid birth date or business number")
	case !cardPwPattern.MatchString(cmd.CardPw):
		return errors.NewValidationError("invalid card password")
	case cmd.PlanID == 0:
		return errors.NewValidationError("plan ID is required")
	case cmd.OwnerID == 0:
		return errors.NewValidationError("owner ID is required")
	case !cmd.OwnerType.IsValid():
		return errors.NewValidationError("invalid owner type")
	}
	return nil
}

// handleFailedCheckout runs after the transaction rolled back. When the
// charge was already approved the approval is cancelled.
func (uc *RegisterBillingUseCase) handleFailedCheckout(
	ctx context.Context,
	cmd RegisterBillingCommand,
	key *billingkey.BillingKey,
	pay *payment.Payment,
	approved *gateway.ApproveResult,
	chargeErr, txErr error,
) error {
	// The fresh key is not stored anywhere, expire it at the gateway too.
	defer uc.removeAtGateway(ctx, key)

	if chargeErr != nil {
		if tid, ok := uncertainTID(chargeErr); ok {
			return uc.cancelUnansweredCharge(ctx, cmd, pay, tid, chargeErr)
		}

		tid, code, msg, raw := resultFields(chargeErr)
		pay.MarkFailed(tid, code, msg, raw)
		uc.recordPayment(ctx, pay)
		uc.metrics.RecordCharge(string(paymentVO.ChargeKindInitial), "failed")
		uc.logger.Warnw("checkout charge rejected",
			"member_id", cmd.MemberID,
			"order_id", pay.OrderID(),
			"result_code", code,
		)
		return toGatewayError(chargeErr)
	}

	if approved == nil {
		uc.logger.Errorw("checkout failed before charge", "member_id", cmd.MemberID, "error", txErr)
		return fmt.Errorf("checkout failed: %w", txErr)
	}

	uc.logger.Errorw("checkout commit failed after approval, cancelling charge",
		"member_id", cmd.MemberID,
		"order_id", pay.OrderID(),
		"tid", approved.TID,
		"error", txErr,
	)
	pay.MarkApproved(approved.TID, approved.ResultCode, approved.ResultMsg, approved.Raw)

	res, err := uc.gateway.CancelApproval(ctx, gateway.CancelRequest{
		TID:     approved.TID,
		OrderID: pay.OrderID(),
		Amount:  pay.Amount(),
		Reason:  "subscription could not be saved",
	})
	if err != nil {
		uc.metrics.CompensationsTotal.WithLabelValues("failed").Inc()
		uc.recordPayment(ctx, pay)
		uc.logger.Errorw("failed to cancel approved charge",
			"member_id", cmd.MemberID,
			"order_id", pay.OrderID(),
			"tid", approved.TID,
			"error", err,
		)
		uc.alert(ctx, "Checkout charge needs manual refund", fmt.Sprintf(
			"Charge %s (order %s, %d KRW, member %d) was approved but the subscription was not saved, and the automatic cancel failed: %v",
			approved.TID, pay.OrderID(), pay.Amount(), cmd.MemberID, err,
		))
		return errors.NewInternalError("failed to complete checkout")
	}

	_ = pay.MarkCancelled(res.ResultCode, res.ResultMsg)
	uc.recordPayment(ctx, pay)
	uc.metrics.CompensationsTotal.WithLabelValues("succeeded").Inc()
	uc.logger.Infow("approved charge cancelled", "tid", approved.TID, "order_id", pay.OrderID())

	return errors.NewInternalError("failed to complete checkout")
}

// cancelUnansweredCharge handles an approval that timed out. Nothing was
// committed locally, so the charge is cancelled at the gateway by TID.
func (uc *RegisterBillingUseCase) cancelUnansweredCharge(
	ctx context.Context,
	cmd RegisterBillingCommand,
	pay *payment.Payment,
	tid string,
	chargeErr error,
) error {
	uc.logger.Warnw("checkout approval got no answer, cancelling charge",
		"member_id", cmd.MemberID,
		"order_id", pay.OrderID(),
		"tid", tid,
		"error", chargeErr,
	)

	if err := netCancel(ctx, uc.gateway, pay, tid, chargeErr); err != nil {
		uc.recordPayment(ctx, pay)
		uc.metrics.RecordCharge(string(paymentVO.ChargeKindInitial), "unknown")
		uc.metrics.CompensationsTotal.WithLabelValues("failed").Inc()
		uc.logger.Errorw("failed to cancel unanswered checkout charge",
			"member_id", cmd.MemberID,
			"order_id", pay.OrderID(),
			"tid", tid,
			"error", err,
		)
		uc.alert(ctx, "Checkout charge needs manual review", fmt.Sprintf(
			"Approval %s (order %s, %d KRW, member %d) got no gateway answer and the automatic cancel failed: %v",
			tid, pay.OrderID(), pay.Amount(), cmd.MemberID, err,
		))
		return toGatewayError(chargeErr)
	}

	uc.recordPayment(ctx, pay)
	uc.metrics.RecordCharge(string(paymentVO.ChargeKindInitial), "cancelled")
	uc.metrics.CompensationsTotal.WithLabelValues("succeeded").Inc()
	uc.logger.Infow("unanswered checkout charge cancelled", "tid", tid, "order_id", pay.OrderID())
	return toGatewayError(chargeErr)
}

func (uc *RegisterBillingUseCase) recordPayment(ctx context.Context, pay *payment.Payment) {
	if err := uc.paymentRepo.Create(ctx, pay); err != nil {
		uc.logger.Errorw("failed to record payment",
			"order_id", pay.OrderID(),
			"status", pay.Status(),
			"error", err,
		)
	}
}

func (uc *RegisterBillingUseCase) removeAtGateway(ctx context.Context, key *billingkey.BillingKey) {
	orderID := id.NewOrderID(id.PrefixRemove, key.MemberID(), uc.now())
	if err := uc.gateway.RemoveBillingKey(ctx, key.BID(), orderID); err != nil {
		uc.logger.Warnw("failed to remove billing key at gateway",
			"member_id", key.MemberID(),
			"billing_key_id", key.ID(),
			"error", err,
		)
	}
}

func (uc *RegisterBillingUseCase) alert(ctx context.Context, subject, body string) {
	if uc.alerter == nil {
		return
	}
	if err := uc.alerter.SendAlert(ctx, subject, body); err != nil {
		uc.logger.Errorw("failed to send billing alert", "subject", subject, "error", err)
	}
}
