package dto

import (
	"time"

	"github.com/pecal-inc/pecal/internal/domain/billingkey"
)

// RegisterBillingRequest is the checkout body. Card fields are sent to the
// gateway encrypted and never stored.
type RegisterBillingRequest struct {
	CardNo    string `json:"card_no" binding:"required"`
	ExpYear   string `json:"exp_year" binding:"required"`
	ExpMonth  string `json:"exp_month" binding:"required"`
	IDNo      string `json:"id_no" binding:"required"`
	CardPw    string `json:"card_pw" binding:"required"`
	PlanID    uint   `json:"plan_id" binding:"required"`
	OwnerID   uint   `json:"owner_id" binding:"required"`
	OwnerType string `json:"owner_type" binding:"required,oneof=team personal"`
}

type RegisterBillingResponse struct {
	TID            string `json:"tid"`
	SubscriptionID uint   `json:"subscription_id"`
	BillingKeyID   uint   `json:"billing_key_id"`
}

type BillingKeyDTO struct {
	ID           uint      `json:"id"`
	CardCode     string    `json:"card_code"`
	CardName     string    `json:"card_name"`
	CardNoMasked string    `json:"card_no_masked"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToBillingKeyDTO(k *billingkey.BillingKey) *BillingKeyDTO {
	if k == nil {
		return nil
	}
	return &BillingKeyDTO{
		ID:           k.ID(),
		CardCode:     k.CardCode(),
		CardName:     k.CardName(),
		CardNoMasked: k.CardNoMasked(),
		CreatedAt:    k.CreatedAt(),
	}
}
