package usecases

import "context"

// TransactionRunner runs fn in one database transaction carried by ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunLock keeps two recurring charge runs from overlapping.
type RunLock interface {
	// TryAcquire returns an empty token when the lock is already held.
	TryAcquire(ctx context.Context) (string, error)
	Release(ctx context.Context, token string) error
}

// Alerter notifies billing operators about states that need a human.
type Alerter interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// BillingSettings are the billing knobs the use cases read.
type BillingSettings struct {
	// GoodsNamePrefix is prepended to the plan name on card statements.
	GoodsNamePrefix string
	// MaxRetryCount expires a subscription once this many consecutive
	// recurring charges failed. Zero keeps retrying forever.
	MaxRetryCount int
}

func (s BillingSettings) goodsName(planName string) string {
	if s.GoodsNamePrefix == "" {
		return planName
	}
	return s.GoodsNamePrefix + " " + planName
}
