package dto

import (
	"time"

	"github.com/pecal-inc/pecal/internal/domain/subscription"
)

// SubscriptionDTO is the API view of a ledger row.
type SubscriptionDTO struct {
	ID                 uint       `json:"id"`
	OwnerID            uint       `json:"owner_id"`
	OwnerType          string     `json:"owner_type"`
	PlanID             uint       `json:"plan_id"`
	PlanName           string     `json:"plan_name,omitempty"`
	PlanPrice          int64      `json:"plan_price"`
	Status             string     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at"`
	NextPaymentDate    *time.Time `json:"next_payment_date"`
	CreatedBy          uint       `json:"created_by"`
	BillingKeyMemberID uint       `json:"billing_key_member_id"`
	RetryCount         int        `json:"retry_count"`
}

type UpdateStatusRequest struct {
	SubscriptionID uint   `json:"subscription_id" binding:"required"`
	Status         string `json:"status" binding:"required"`
}

func ToSubscriptionDTO(s *subscription.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                 s.ID(),
		OwnerID:            s.OwnerID(),
		OwnerType:          s.OwnerType().String(),
		PlanID:             s.PlanID(),
		PlanName:           s.PlanName(),
		PlanPrice:          s.PlanPrice(),
		Status:             s.Status().String(),
		StartedAt:          s.StartedAt(),
		EndedAt:            s.EndedAt(),
		NextPaymentDate:    s.NextPaymentDate(),
		CreatedBy:          s.CreatedBy(),
		BillingKeyMemberID: s.BillingKeyMemberID(),
		RetryCount:         s.RetryCount(),
	}
}

func ToSubscriptionDTOList(subs []*subscription.Subscription) []*SubscriptionDTO {
	result := make([]*SubscriptionDTO, 0, len(subs))
	for _, s := range subs {
		result = append(result, ToSubscriptionDTO(s))
	}
	return result
}
