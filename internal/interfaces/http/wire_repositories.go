package http

import (
	"gorm.io/gorm"

	"github.com/pecal-inc/pecal/internal/domain/billingkey"
	"github.com/pecal-inc/pecal/internal/domain/entitlement"
	"github.com/pecal-inc/pecal/internal/domain/payment"
	"github.com/pecal-inc/pecal/internal/domain/plan"
	"github.com/pecal-inc/pecal/internal/domain/subscription"
	"github.com/pecal-inc/pecal/internal/infrastructure/repository"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// repositories holds all repository instances.
type repositories struct {
	planRepo         plan.Repository
	billingKeyRepo   billingkey.Repository
	subscriptionRepo subscription.Repository
	paymentRepo      payment.Repository
	storageUsageRepo entitlement.StorageUsageRepository
	teamMembership   entitlement.TeamMembership
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		planRepo:         repository.NewPlanRepository(db),
		billingKeyRepo:   repository.NewBillingKeyRepository(db, log),
		subscriptionRepo: repository.NewSubscriptionRepository(db, log),
		paymentRepo:      repository.NewPaymentRepository(db),
		storageUsageRepo: repository.NewStorageUsageRepository(db),
		teamMembership:   repository.NewTeamMembershipRepository(db),
	}
}
