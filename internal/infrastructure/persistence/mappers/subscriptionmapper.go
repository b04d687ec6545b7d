package mappers

import (
	"fmt"

	"github.com/pecal-inc/pecal/internal/domain/subscription"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                 s.ID(),
		OwnerID:            s.OwnerID(),
		OwnerType:          s.OwnerType().String(),
		PlanID:             s.PlanID(),
		Status:             s.Status().String(),
		StartedAt:          s.StartedAt(),
		EndedAt:            s.EndedAt(),
		NextPaymentDate:    s.NextPaymentDate(),
		CreatedBy:          s.CreatedBy(),
		BillingKeyMemberID: s.BillingKeyMemberID(),
		RetryCount:         s.RetryCount(),
	}
}

func SubscriptionToDomain(m *models.SubscriptionModel) (*subscription.Subscription, error) {
	if m == nil {
		return nil, nil
	}
	s, err := subscription.ReconstructSubscription(
		m.ID, m.OwnerID, vo.OwnerType(m.OwnerType), m.PlanID,
		vo.SubscriptionStatus(m.Status),
		m.StartedAt.UTC(), utcPtr(m.EndedAt), utcPtr(m.NextPaymentDate),
		m.CreatedBy, m.BillingKeyMemberID, m.RetryCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to map subscription %d: %w", m.ID, err)
	}
	return s, nil
}

func SubscriptionWithPlanToDomain(row *models.SubscriptionWithPlan) (*subscription.Subscription, error) {
	s, err := SubscriptionToDomain(&row.SubscriptionModel)
	if err != nil {
		return nil, err
	}
	var name string
	var price int64
	if row.PlanName != nil {
		name = *row.PlanName
	}
	if row.PlanPrice != nil {
		price = *row.PlanPrice
	}
	s.AttachPlan(name, price)
	return s, nil
}

func SubscriptionsToDomain(ms []models.SubscriptionModel) ([]*subscription.Subscription, error) {
	result := make([]*subscription.Subscription, 0, len(ms))
	for i := range ms {
		s, err := SubscriptionToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}
