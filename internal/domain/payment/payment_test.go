package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/pecal-inc/pecal/internal/domain/payment/valueobjects"
)

func TestPayment_Transitions(t *testing.T) {
	p, err := NewPayment("PECAL_AP_1_1", 1, 9900, "Pecal Pro", vo.ChargeKindInitial)
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusFailed, p.Status())

	assert.Error(t, p.MarkCancelled("2001", "취소 성공"))

	p.MarkApproved("TID1", "3001", "신용카드 카드결제 성공", map[string]interface{}{"ResultCode": "3001"})
	assert.Equal(t, vo.PaymentStatusApproved, p.Status())
	assert.Equal(t, "TID1", p.TID())

	require.NoError(t, p.MarkCancelled("2001", "취소 성공"))
	assert.Equal(t, vo.PaymentStatusCancelled, p.Status())
}

func TestPayment_UnknownCanBeCancelled(t *testing.T) {
	p, err := NewPayment("PECAL_RC_1_1", 1, 9900, "Pecal Pro", vo.ChargeKindRecurring)
	require.NoError(t, err)

	p.MarkUnknown("nictest04m01162403050004091234", "NETWORK", "timeout", nil)
	assert.Equal(t, vo.PaymentStatusUnknown, p.Status())
	assert.Equal(t, "nictest04m01162403050004091234", p.TID())

	require.NoError(t, p.MarkCancelled("2001", "취소 성공"))
	assert.Equal(t, vo.PaymentStatusCancelled, p.Status())
	assert.Equal(t, "2001", p.ResultCode())
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment("", 1, 100, "x", vo.ChargeKindRecurring)
	assert.Error(t, err)
	_, err = NewPayment("M", 1, 0, "x", vo.ChargeKindRecurring)
	assert.Error(t, err)
}
