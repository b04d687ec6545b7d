package mappers

import (
	"gorm.io/datatypes"

	"github.com/pecal-inc/pecal/internal/domain/payment"
	vo "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
	"github.com/pecal-inc/pecal/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	model := &models.PaymentModel{
		ID:             p.ID(),
		OrderID:        p.OrderID(),
		TID:            p.TID(),
		SubscriptionID: p.SubscriptionID(),
		MemberID:       p.MemberID(),
		Amount:         p.Amount(),
		GoodsName:      p.GoodsName(),
		Kind:           string(p.Kind()),
		Status:         p.Status().String(),
		ResultCode:     p.ResultCode(),
		ResultMsg:      p.ResultMsg(),
		CreatedAt:      p.CreatedAt(),
	}
	if len(p.RawResponse()) > 0 {
		model.RawResponse = datatypes.JSONMap(p.RawResponse())
	}
	return model
}

func PaymentToDomain(m *models.PaymentModel) *payment.Payment {
	if m == nil {
		return nil
	}
	raw := map[string]interface{}(m.RawResponse)
	if raw == nil {
		raw = make(map[string]interface{})
	}
	return payment.ReconstructPayment(
		m.ID, m.OrderID, m.TID, m.SubscriptionID, m.MemberID, m.Amount, m.GoodsName,
		vo.ChargeKind(m.Kind), vo.PaymentStatus(m.Status), m.ResultCode, m.ResultMsg,
		raw, m.CreatedAt,
	)
}
