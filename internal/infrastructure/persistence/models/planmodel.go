package models

import (
	"time"

	"github.com/pecal-inc/pecal/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans
type PlanModel struct {
	ID              uint      `gorm:"column:plan_id;primaryKey"`
	Name            string    `gorm:"not null;size:100;uniqueIndex:uk_plans_name"`
	Price           int64     `gorm:"not null;default:0;index:idx_plans_price"`
	MaxMembers      int       `gorm:"not null;default:1"`
	MaxStorageMB    int       `gorm:"column:max_storage_mb;not null;default:1000"`
	PayPalPlanID    *string   `gorm:"column:paypal_plan_id;size:64"`
	PayPalProductID *string   `gorm:"column:paypal_product_id;size:64"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}
