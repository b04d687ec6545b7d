package usecases

import (
	"context"
	stderrors "errors"

	"github.com/pecal-inc/pecal/internal/application/billing/gateway"
	"github.com/pecal-inc/pecal/internal/domain/payment"
	"github.com/pecal-inc/pecal/internal/shared/errors"
)

// toGatewayError maps a gateway failure to the error returned to clients.
// The provider message is passed through unchanged.
func toGatewayError(err error) error {
	var resErr *gateway.ResultError
	if stderrors.As(err, &resErr) {
		return errors.NewGatewayError(resErr.Message(), resErr.ResultCode)
	}
	return errors.NewGatewayError("payment gateway is unavailable")
}

// resultFields extracts what a payment record keeps from a failed call.
func resultFields(err error) (tid, code, msg string, raw map[string]interface{}) {
	var resErr *gateway.ResultError
	if stderrors.As(err, &resErr) {
		msg = resErr.ResultMsg
		if msg == "" && resErr.Err != nil {
			msg = resErr.Err.Error()
		}
		return resErr.TID, resErr.ResultCode, msg, resErr.Raw
	}
	return "", gateway.ResultCodeNetwork, err.Error(), nil
}

// uncertainTID returns the TID of an approval that got no gateway answer.
// The charge may still have been captured, so it has to be cancelled
// before the attempt can be treated as declined.
func uncertainTID(err error) (string, bool) {
	var resErr *gateway.ResultError
	if !stderrors.As(err, &resErr) {
		return "", false
	}
	if resErr.ResultCode != gateway.ResultCodeNetwork || resErr.TID == "" {
		return "", false
	}
	return resErr.TID, true
}

// netCancel cancels the charge behind an unanswered approval. pay ends
// CANCELLED when the gateway confirms the cancel and UNKNOWN otherwise.
func netCancel(ctx context.Context, gw gateway.BillingGateway, pay *payment.Payment, tid string, chargeErr error) error {
	_, code, msg, raw := resultFields(chargeErr)
	pay.MarkUnknown(tid, code, msg, raw)

	// the approval may have failed on the caller's deadline
	res, err := gw.CancelApproval(context.WithoutCancel(ctx), gateway.CancelRequest{
		TID:     tid,
		OrderID: pay.OrderID(),
		Amount:  pay.Amount(),
		Reason:  "approval response not received",
	})
	if err != nil {
		return err
	}
	return pay.MarkCancelled(res.ResultCode, res.ResultMsg)
}
