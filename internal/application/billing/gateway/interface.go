// Package gateway defines the payment gateway port used by billing use cases.
package gateway

import (
	"context"
	"fmt"
)

// Operation names, also used as metric labels.
const (
	OperationRegister = "register"
	OperationApprove  = "approve"
	OperationRemove   = "remove"
	OperationCancel   = "cancel"
)

// ResultCodeNetwork marks a call that never produced a gateway answer.
const ResultCodeNetwork = "NETWORK"

// BillingGateway issues billing keys and charges them.
type BillingGateway interface {
	// EncryptCardData encrypts raw card fields with the merchant key.
	EncryptCardData(card CardData) (string, error)
	RegisterBillingKey(ctx context.Context, encData, orderID string) (*RegisterResult, error)
	ApproveBilling(ctx context.Context, req ApproveRequest) (*ApproveResult, error)
	// RemoveBillingKey expires a key at the gateway. Callers treat failure as non-fatal.
	RemoveBillingKey(ctx context.Context, bid, orderID string) error
	// CancelApproval reverses an approved charge in full.
	CancelApproval(ctx context.Context, req CancelRequest) (*CancelResult, error)
}

// CardData is the raw card input. It must never be persisted or logged.
type CardData struct {
	CardNo   string
	ExpYear  string // YY
	ExpMonth string // MM
	IDNo     string // birth date (YYMMDD) or business number
	CardPw   string // first two digits of the card password
}

type RegisterResult struct {
	BID        string
	CardCode   string
	CardName   string
	CardNo     string
	AuthDate   string
	ResultCode string
	ResultMsg  string
}

type ApproveRequest struct {
	BID       string
	OrderID   string
	Amount    int64
	GoodsName string
}

type ApproveResult struct {
	TID        string
	AuthCode   string
	AuthDate   string
	Amount     int64
	ResultCode string
	ResultMsg  string
	Raw        map[string]interface{}
}

type CancelRequest struct {
	TID     string
	OrderID string
	Amount  int64
	Reason  string
}

type CancelResult struct {
	TID        string
	ResultCode string
	ResultMsg  string
}

// ResultError is returned when the gateway answers with anything but the
// documented success code, or cannot be reached.
type ResultError struct {
	Operation  string
	ResultCode string
	ResultMsg  string
	TID        string
	Raw        map[string]interface{}
	Err        error
}

func (e *ResultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nicepay %s failed: %s: %v", e.Operation, e.ResultCode, e.Err)
	}
	return fmt.Sprintf("nicepay %s failed: [%s] %s", e.Operation, e.ResultCode, e.ResultMsg)
}

func (e *ResultError) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the member.
func (e *ResultError) Message() string {
	if e.ResultMsg != "" {
		return e.ResultMsg
	}
	return "payment gateway is unavailable"
}
