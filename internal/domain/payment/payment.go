// Package payment records every charge attempt sent to the gateway.
package payment

import (
	"fmt"
	"time"

	vo "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
)

type Payment struct {
	id             uint
	orderID        string
	tid            string
	subscriptionID *uint
	memberID       uint
	amount         int64
	goodsName      string
	kind           vo.ChargeKind
	status         vo.PaymentStatus
	resultCode     string
	resultMsg      string
	rawResponse    map[string]interface{}
	createdAt      time.Time
}

// NewPayment records the outcome of a single approval request.
func NewPayment(orderID string, memberID uint, amount int64, goodsName string, kind vo.ChargeKind) (*Payment, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return &Payment{
		orderID:     orderID,
		memberID:    memberID,
		amount:      amount,
		goodsName:   goodsName,
		kind:        kind,
		status:      vo.PaymentStatusFailed,
		rawResponse: map[string]interface{}{},
		createdAt:   time.Now().UTC().Truncate(time.Second),
	}, nil
}

// ReconstructPayment reconstructs a payment from persistence
func ReconstructPayment(
	id uint,
	orderID, tid string,
	subscriptionID *uint,
	memberID uint,
	amount int64,
	goodsName string,
	kind vo.ChargeKind,
	status vo.PaymentStatus,
	resultCode, resultMsg string,
	rawResponse map[string]interface{},
	createdAt time.Time,
) *Payment {
	return &Payment{
		id:             id,
		orderID:        orderID,
		tid:            tid,
		subscriptionID: subscriptionID,
		memberID:       memberID,
		amount:         amount,
		goodsName:      goodsName,
		kind:           kind,
		status:         status,
		resultCode:     resultCode,
		resultMsg:      resultMsg,
		rawResponse:    rawResponse,
		createdAt:      createdAt,
	}
}

func (p *Payment) ID() uint                            { return p.id }
func (p *Payment) OrderID() string                     { return p.orderID }
func (p *Payment) TID() string                         { return p.tid }
func (p *Payment) SubscriptionID() *uint               { return p.subscriptionID }
func (p *Payment) MemberID() uint                      { return p.memberID }
func (p *Payment) Amount() int64                       { return p.amount }
func (p *Payment) GoodsName() string                   { return p.goodsName }
func (p *Payment) Kind() vo.ChargeKind                 { return p.kind }
func (p *Payment) Status() vo.PaymentStatus            { return p.status }
func (p *Payment) ResultCode() string                  { return p.resultCode }
func (p *Payment) ResultMsg() string                   { return p.resultMsg }
func (p *Payment) RawResponse() map[string]interface{} { return p.rawResponse }
func (p *Payment) CreatedAt() time.Time                { return p.createdAt }

func (p *Payment) SetID(id uint) {
	p.id = id
}

func (p *Payment) SetSubscriptionID(id uint) {
	p.subscriptionID = &id
}

// MarkApproved stores the gateway approval.
func (p *Payment) MarkApproved(tid, resultCode, resultMsg string, raw map[string]interface{}) {
	p.tid = tid
	p.status = vo.PaymentStatusApproved
	p.setResult(resultCode, resultMsg, raw)
}

// MarkFailed stores a rejected or unreachable approval.
func (p *Payment) MarkFailed(tid, resultCode, resultMsg string, raw map[string]interface{}) {
	if tid != "" {
		p.tid = tid
	}
	p.status = vo.PaymentStatusFailed
	p.setResult(resultCode, resultMsg, raw)
}

// MarkUnknown stores an approval that may have been captured without the
// gateway answering.
func (p *Payment) MarkUnknown(tid, resultCode, resultMsg string, raw map[string]interface{}) {
	if tid != "" {
		p.tid = tid
	}
	p.status = vo.PaymentStatusUnknown
	p.setResult(resultCode, resultMsg, raw)
}

// MarkCancelled records that an approved or unknown charge was reversed.
func (p *Payment) MarkCancelled(resultCode, resultMsg string) error {
	if p.status != vo.PaymentStatusApproved && p.status != vo.PaymentStatusUnknown {
		return fmt.Errorf("only approved or unknown payments can be cancelled, got %s", p.status)
	}
	p.status = vo.PaymentStatusCancelled
	p.resultCode = resultCode
	p.resultMsg = resultMsg
	return nil
}

func (p *Payment) setResult(code, msg string, raw map[string]interface{}) {
	p.resultCode = code
	p.resultMsg = msg
	if raw != nil {
		p.rawResponse = raw
	}
}
