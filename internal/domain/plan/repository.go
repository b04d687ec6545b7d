package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	// GetByID returns nil when the plan does not exist.
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	// List returns all plans ordered by price ascending.
	List(ctx context.Context) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uint) error
}
