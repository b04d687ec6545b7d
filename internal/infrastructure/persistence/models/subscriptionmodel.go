package models

import (
	"time"

	"github.com/pecal-inc/pecal/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions
type SubscriptionModel struct {
	ID                 uint   `gorm:"column:subscription_id;primaryKey"`
	OwnerID            uint   `gorm:"not null;index:idx_subscriptions_owner,priority:2"`
	OwnerType          string `gorm:"not null;size:20;index:idx_subscriptions_owner,priority:1"`
	PlanID             uint   `gorm:"not null"`
	Status             string `gorm:"not null;size:20;index:idx_subscriptions_due,priority:1"`
	StartedAt          time.Time
	EndedAt            *time.Time
	NextPaymentDate    *time.Time `gorm:"index:idx_subscriptions_due,priority:2"`
	CreatedBy          uint       `gorm:"not null"`
	BillingKeyMemberID uint       `gorm:"not null"`
	RetryCount         int        `gorm:"not null;default:0"`
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// SubscriptionWithPlan is a subscription row joined with its plan.
type SubscriptionWithPlan struct {
	SubscriptionModel `gorm:"embedded"`
	PlanName          *string
	PlanPrice         *int64
}
