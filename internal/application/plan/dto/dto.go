package dto

import (
	"time"

	"github.com/pecal-inc/pecal/internal/domain/plan"
)

type PlanDTO struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	MaxMembers      int       `json:"max_members"`
	MaxStorageMB    int       `json:"max_storage_mb"`
	PayPalPlanID    *string   `json:"paypal_plan_id,omitempty"`
	PayPalProductID *string   `json:"paypal_product_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlanRequest is used for both create and update.
type PlanRequest struct {
	Name            string  `json:"name" yaml:"name" binding:"required"`
	Price           int64   `json:"price" yaml:"price" binding:"gte=0"`
	MaxMembers      int     `json:"max_members" yaml:"max_members" binding:"required,gte=1"`
	MaxStorageMB    int     `json:"max_storage_mb" yaml:"max_storage_mb" binding:"required,gte=1"`
	PayPalPlanID    *string `json:"paypal_plan_id,omitempty" yaml:"paypal_plan_id,omitempty"`
	PayPalProductID *string `json:"paypal_product_id,omitempty" yaml:"paypal_product_id,omitempty"`
}

func ToPlanDTO(p *plan.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:              p.ID(),
		Name:            p.Name(),
		Price:           p.Price(),
		MaxMembers:      p.MaxMembers(),
		MaxStorageMB:    p.MaxStorageMB(),
		PayPalPlanID:    p.PayPalPlanID(),
		PayPalProductID: p.PayPalProductID(),
		CreatedAt:       p.CreatedAt(),
	}
}

func ToPlanDTOList(plans []*plan.Plan) []*PlanDTO {
	result := make([]*PlanDTO, 0, len(plans))
	for _, p := range plans {
		result = append(result, ToPlanDTO(p))
	}
	return result
}
