package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/domain/payment"
	paymentVO "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/metrics"
	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/id"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

const recurringKind = string(paymentVO.ChargeKindRecurring)

// ProcessDueSubscriptionsUseCase charges every due subscription once.
// A failed row never stops the batch.
type ProcessDueSubscriptionsUseCase struct {
	gateway          gateway.BillingGateway
	subscriptionRepo subscription.Repository
	planRepo         plan.Repository
	billingKeyRepo   billingkey.Repository
	paymentRepo      payment.Repository
	lock             RunLock
	alerter          Alerter
	metrics          *metrics.Metrics
	settings         BillingSettings
	logger           logger.Interface
	now              func() time.Time
}

func NewProcessDueSubscriptionsUseCase(
	gw gateway.BillingGateway,
	subscriptionRepo subscription.Repository,
	planRepo plan.Repository,
	billingKeyRepo billingkey.Repository,
	paymentRepo payment.Repository,
	lock RunLock,
	alerter Alerter,
	m *metrics.Metrics,
	settings BillingSettings,
	logger logger.Interface,
) *ProcessDueSubscriptionsUseCase {
	return &ProcessDueSubscriptionsUseCase{
		gateway:          gw,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		billingKeyRepo:   billingKeyRepo,
		paymentRepo:      paymentRepo,
		lock:             lock,
		alerter:          alerter,
		metrics:          m,
		settings:         settings,
		logger:           logger,
		now:              biztime.NowUTC,
	}
}

// Execute returns the number of subscriptions renewed in this run.
func (uc *ProcessDueSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	if uc.lock != nil {
		token, err := uc.lock.TryAcquire(ctx)
		if err != nil {
			return 0, err
		}
		if token == "" {
			uc.metrics.ChargeRunsSkipped.Inc()
			uc.logger.Infow("recurring charge run already in progress, skipping")
			return 0, nil
		}
		defer func() {
			// the run context may be done by now
			if err := uc.lock.Release(context.WithoutCancel(ctx), token); err != nil {
				uc.logger.Warnw("failed to release charge lock", "error", err)
			}
		}()
	}

	now := uc.now()
	due, err := uc.subscriptionRepo.GetDue(ctx, now)
	if err != nil {
		uc.logger.Errorw("failed to load due subscriptions", "error", err)
		return 0, fmt.Errorf("failed to load due subscriptions: %w", err)
	}
	uc.metrics.DueSubscriptions.Set(float64(len(due)))

	if len(due) == 0 {
		uc.logger.Debugw("no due subscriptions")
		return 0, nil
	}

	renewed, failed := 0, 0
	for _, sub := range due {
		if ctx.Err() != nil {
			uc.logger.Warnw("recurring charge run interrupted",
				"remaining", len(due)-renewed-failed,
				"error", ctx.Err(),
			)
			break
		}
		if uc.chargeOne(ctx, sub, now) {
			renewed++
		} else {
			failed++
		}
	}

	uc.logger.Infow("recurring charge run finished",
		"due", len(due),
		"renewed", renewed,
		"failed", failed,
	)
	return renewed, nil
}

// chargeOne reports whether sub was renewed.
func (uc *ProcessDueSubscriptionsUseCase) chargeOne(ctx context.Context, sub *subscription.Subscription, now time.Time) bool {
	log := uc.logger.With("subscription_id", sub.ID(), "owner_id", sub.OwnerID(), "owner_type", sub.OwnerType())

	p, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil || p == nil {
		log.Errorw("cannot charge subscription without plan", "plan_id", sub.PlanID(), "error", err)
		uc.handleFailure(ctx, sub, now, "plan not found")
		return false
	}

	if p.Price() <= 0 {
		if err := uc.subscriptionRepo.AdvancePaymentDate(ctx, sub.ID()); err != nil {
			log.Errorw("failed to advance free subscription", "error", err)
			return false
		}
		uc.metrics.RecordCharge(recurringKind, "skipped")
		return true
	}

	key, err := uc.billingKeyRepo.GetActiveByMemberID(ctx, sub.BillingKeyMemberID())
	if err != nil || key == nil {
		log.Warnw("no active billing key for subscription",
			"billing_key_member_id", sub.BillingKeyMemberID(),
			"error", err,
		)
		uc.metrics.RecordCharge(recurringKind, "failed")
		uc.handleFailure(ctx, sub, now, "no active billing key")
		return false
	}

	orderID := id.NewOrderID(id.PrefixRecurring, sub.ID(), now)
	pay, err := payment.NewPayment(orderID, sub.BillingKeyMemberID(), p.Price(), uc.settings.goodsName(p.Name()), paymentVO.ChargeKindRecurring)
	if err != nil {
		log.Errorw("failed to create payment record", "error", err)
		return false
	}
	pay.SetSubscriptionID(sub.ID())

	res, err := uc.gateway.ApproveBilling(ctx, gateway.ApproveRequest{
		BID:       key.BID(),
		OrderID:   orderID,
		Amount:    p.Price(),
		GoodsName: pay.GoodsName(),
	})
	if err != nil {
		if tid, ok := uncertainTID(err); ok {
			uc.cancelUnansweredCharge(ctx, log, sub, pay, tid, err, now)
			return false
		}

		tid, code, msg, raw := resultFields(err)
		pay.MarkFailed(tid, code, msg, raw)
		uc.recordPayment(ctx, pay)
		uc.metrics.RecordCharge(recurringKind, "failed")
		log.Warnw("recurring charge failed", "order_id", orderID, "result_code", code, "result_msg", msg)
		uc.handleFailure(ctx, sub, now, msg)
		return false
	}

	pay.MarkApproved(res.TID, res.ResultCode, res.ResultMsg, res.Raw)
	uc.recordPayment(ctx, pay)
	uc.metrics.RecordCharge(recurringKind, "approved")

	if err := uc.subscriptionRepo.AdvancePaymentDate(ctx, sub.ID()); err != nil {
		if stderrors.Is(err, subscription.ErrConcurrentUpdate) {
			log.Warnw("payment date already advanced by another writer", "tid", res.TID)
			return true
		}
		log.Errorw("charge approved but payment date not advanced", "tid", res.TID, "error", err)
		uc.alert(ctx, "Recurring charge not booked", fmt.Sprintf(
			"Subscription %d was charged (TID %s, order %s) but its next payment date could not be advanced: %v",
			sub.ID(), res.TID, orderID, err,
		))
		return false
	}

	log.Infow("subscription renewed", "tid", res.TID, "amount", p.Price())
	return true
}

// cancelUnansweredCharge cancels a renewal whose approval timed out. A
// confirmed cancel counts as a failed attempt. When the cancel fails too the
// charge may stand, so the payment date is advanced to keep the next run
// from charging the card again, and an operator is alerted.
func (uc *ProcessDueSubscriptionsUseCase) cancelUnansweredCharge(
	ctx context.Context,
	log logger.Interface,
	sub *subscription.Subscription,
	pay *payment.Payment,
	tid string,
	chargeErr error,
	now time.Time,
) {
	log.Warnw("recurring approval got no answer, cancelling charge", "order_id", pay.OrderID(), "tid", tid, "error", chargeErr)

	if err := netCancel(ctx, uc.gateway, pay, tid, chargeErr); err != nil {
		uc.recordPayment(ctx, pay)
		uc.metrics.RecordCharge(recurringKind, "unknown")
		uc.metrics.CompensationsTotal.WithLabelValues("failed").Inc()
		log.Errorw("failed to cancel unanswered recurring charge", "order_id", pay.OrderID(), "tid", tid, "error", err)

		advanceErr := uc.subscriptionRepo.AdvancePaymentDate(ctx, sub.ID())
		if advanceErr != nil && !stderrors.Is(advanceErr, subscription.ErrConcurrentUpdate) {
			log.Errorw("failed to hold subscription after unanswered charge", "tid", tid, "error", advanceErr)
		}
		uc.alert(ctx, "Recurring charge needs manual review", fmt.Sprintf(
			"Subscription %d: approval %s (order %s, %d KRW) got no gateway answer and the automatic cancel failed: %v. "+
				"The next payment date was moved forward; confirm the charge with the gateway.",
			sub.ID(), tid, pay.OrderID(), pay.Amount(), err,
		))
		return
	}

	uc.recordPayment(ctx, pay)
	uc.metrics.RecordCharge(recurringKind, "cancelled")
	uc.metrics.CompensationsTotal.WithLabelValues("succeeded").Inc()
	log.Infow("unanswered recurring charge cancelled", "tid", tid, "order_id", pay.OrderID())
	uc.handleFailure(ctx, sub, now, "approval response not received")
}

// handleFailure counts the failed attempt and expires the subscription
// once the configured retry limit is reached.
func (uc *ProcessDueSubscriptionsUseCase) handleFailure(ctx context.Context, sub *subscription.Subscription, now time.Time, reason string) {
	retries, err := uc.subscriptionRepo.IncrementRetryCount(ctx, sub.ID())
	if err != nil {
		uc.logger.Errorw("failed to increment retry count", "subscription_id", sub.ID(), "error", err)
		return
	}

	limit := uc.settings.MaxRetryCount
	if limit <= 0 || retries < limit {
		return
	}

	if err := uc.subscriptionRepo.UpdateStatus(ctx, sub.ID(), vo.StatusExpired, now); err != nil {
		uc.logger.Errorw("failed to expire subscription after retries",
			"subscription_id", sub.ID(),
			"retry_count", retries,
			"error", err,
		)
		return
	}

	uc.metrics.SubscriptionsExpired.Inc()
	uc.logger.Warnw("subscription expired after repeated charge failures",
		"subscription_id", sub.ID(),
		"retry_count", retries,
		"reason", reason,
	)
	uc.alert(ctx, "Subscription expired after failed charges", fmt.Sprintf(
		"Subscription %d (%s %d, plan %d) was expired after %d failed charges. Last failure: %s",
		sub.ID(), sub.OwnerType(), sub.OwnerID(), sub.PlanID(), retries, reason,
	))
}

func (uc *ProcessDueSubscriptionsUseCase) recordPayment(ctx context.Context, pay *payment.Payment) {
	if err := uc.paymentRepo.Create(ctx, pay); err != nil {
		uc.logger.Errorw("failed to record payment", "order_id", pay.OrderID(), "status", pay.Status(), "error", err)
	}
}

func (uc *ProcessDueSubscriptionsUseCase) alert(ctx context.Context, subject, body string) {
	if uc.alerter == nil {
		return
	}
	if err := uc.alerter.SendAlert(ctx, subject, body); err != nil {
		uc.logger.Errorw("failed to send billing alert", "subject", subject, "error", err)
	}
}
