package mappers

import (
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
)

func PlanToModel(p *plan.Plan) *models.PlanModel {
	return &models.PlanModel{
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

func PlanToDomain(m *models.PlanModel) *plan.Plan {
	if m == nil {
		return nil
	}
	return plan.ReconstructPlan(m.ID, m.Name, m.Price, m.MaxMembers, m.MaxStorageMB,
		m.PayPalPlanID, m.PayPalProductID, m.CreatedAt)
}

func PlansToDomain(ms []models.PlanModel) []*plan.Plan {
	plans := make([]*plan.Plan, 0, len(ms))
	for i := range ms {
		plans = append(plans, PlanToDomain(&ms[i]))
	}
	return plans
}
