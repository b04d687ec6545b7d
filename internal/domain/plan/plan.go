package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrNameExists   = errors.New("plan name already exists")
)

// Plan is a priced tier of the service. Price is in Korean won.
type Plan struct {
	id              uint
	name            string
	price           int64
	maxMembers      int
	maxStorageMB    int
	paypalPlanID    *string
	paypalProductID *string
	createdAt       time.Time
}

// NewPlan creates a new plan
func NewPlan(name string, price int64, maxMembers, maxStorageMB int) (*Plan, error) {
	p := &Plan{createdAt: time.Now().UTC()}
	if err := p.Update(name, price, maxMembers, maxStorageMB); err != nil {
		return nil, err
	}
	return p, nil
}

// ReconstructPlan reconstructs a plan from persistence
func ReconstructPlan(id uint, name string, price int64, maxMembers, maxStorageMB int, paypalPlanID, paypalProductID *string, createdAt time.Time) *Plan {
	return &Plan{
		id:              id,
		name:            name,
		price:           price,
		maxMembers:      maxMembers,
		maxStorageMB:    maxStorageMB,
		paypalPlanID:    paypalPlanID,
		paypalProductID: paypalProductID,
		createdAt:       createdAt,
	}
}

// Update replaces the plan's commercial terms.
func (p *Plan) Update(name string, price int64, maxMembers, maxStorageMB int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if price < 0 {
		return fmt.Errorf("plan price cannot be negative")
	}
	if maxMembers < 1 {
		return fmt.Errorf("max members must be at least 1")
	}
	if maxStorageMB < 0 {
		return fmt.Errorf("max storage cannot be negative")
	}
	p.name = name
	p.price = price
	p.maxMembers = maxMembers
	p.maxStorageMB = maxStorageMB
	return nil
}

// SetPayPalIDs links the plan to its PayPal catalog entries.
func (p *Plan) SetPayPalIDs(planID, productID *string) {
	p.paypalPlanID = planID
	p.paypalProductID = productID
}

// SetID sets the plan ID after persistence
func (p *Plan) SetID(id uint) {
	p.id = id
}

// ID returns the plan ID
func (p *Plan) ID() uint {
	return p.id
}

// Name returns the display name
func (p *Plan) Name() string {
	return p.name
}

// Price returns the monthly price in won
func (p *Plan) Price() int64 {
	return p.price
}

func (p *Plan) MaxMembers() int {
	return p.maxMembers
}

func (p *Plan) MaxStorageMB() int {
	return p.maxStorageMB
}

func (p *Plan) PayPalPlanID() *string {
	return p.paypalPlanID
}

func (p *Plan) PayPalProductID() *string {
	return p.paypalProductID
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

// IsFree reports whether the plan needs no payment.
func (p *Plan) IsFree() bool {
	return p.price <= 0
}
