package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/pecal-inc/pecal/internal/shared/constants"
)

// PaymentModel represents one gateway charge attempt
type PaymentModel struct {
	ID             uint   `gorm:"column:payment_id;primaryKey"`
	OrderID        string `gorm:"not null;size:64;uniqueIndex:uk_billing_payments_order"`
	TID            string `gorm:"column:tid;size:40;index:idx_billing_payments_tid"`
	SubscriptionID *uint  `gorm:"index:idx_billing_payments_subscription"`
	MemberID       uint   `gorm:"not null"`
	Amount         int64  `gorm:"not null"`
	GoodsName      string `gorm:"size:100"`
	Kind           string `gorm:"not null;size:20"`
	Status         string `gorm:"not null;size:20"`
	ResultCode     string `gorm:"size:10"`
	ResultMsg      string `gorm:"size:255"`
	RawResponse    datatypes.JSONMap
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return constants.TableBillingPayments
}
