package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	ListBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*Payment, error)
}
