package billingkey

import "context"

type Repository interface {
	// GetActiveByMemberID returns the newest ACTIVE key, or nil.
	GetActiveByMemberID(ctx context.Context, memberID uint) (*BillingKey, error)
	GetByID(ctx context.Context, id uint) (*BillingKey, error)
	// Save retires the member's ACTIVE keys and inserts k in one transaction.
	// It returns the keys it retired.
	Save(ctx context.Context, k *BillingKey) ([]*BillingKey, error)
	// RemoveByID marks the key REMOVED. Removing a removed key is not an error.
	RemoveByID(ctx context.Context, id uint) error
}
