package models

import (
	"time"

	"github.com/pecal-inc/pecal/internal/shared/constants"
)

// BillingKeyModel represents the database persistence model for billing keys
type BillingKeyModel struct {
	ID           uint   `gorm:"column:billing_key_id;primaryKey"`
	MemberID     uint   `gorm:"not null;index:idx_billing_keys_member_status,priority:1"`
	BID          string `gorm:"column:bid;not null;size:64"`
	CardCode     string `gorm:"size:8"`
	CardName     string `gorm:"size:50"`
	CardNoMasked string `gorm:"size:32"`
	Status       string `gorm:"not null;size:20;index:idx_billing_keys_member_status,priority:2"`
	CreatedAt    time.Time
	RemovedAt    *time.Time
}

// TableName specifies the table name for GORM
func (BillingKeyModel) TableName() string {
	return constants.TableBillingKeys
}
