package mappers

import (
	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
)

func BillingKeyToModel(k *billingkey.BillingKey) *models.BillingKeyModel {
	return &models.BillingKeyModel{
		ID:           k.ID(),
		MemberID:     k.MemberID(),
		BID:          k.BID(),
		CardCode:     k.CardCode(),
		CardName:     k.CardName(),
		CardNoMasked: k.CardNoMasked(),
		Status:       string(k.Status()),
		CreatedAt:    k.CreatedAt(),
		RemovedAt:    k.RemovedAt(),
	}
}

func BillingKeyToDomain(m *models.BillingKeyModel) *billingkey.BillingKey {
	if m == nil {
		return nil
	}
	return billingkey.ReconstructBillingKey(m.ID, m.MemberID, m.BID, m.CardCode, m.CardName,
		m.CardNoMasked, billingkey.Status(m.Status), m.CreatedAt, m.RemovedAt)
}
