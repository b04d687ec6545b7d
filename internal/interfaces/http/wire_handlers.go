package http

import (
	"github.com/pecal-inc/pecal/internal/interfaces/http/handlers"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	billingHandler      *handlers.BillingHandler
	subscriptionHandler *handlers.SubscriptionHandler
	planHandler         *handlers.PlanHandler
	entitlementHandler  *handlers.EntitlementHandler
	healthHandler       *handlers.HealthHandler
}

func newHandlers(ucs *allUseCases, checks []handlers.HealthCheck, log logger.Interface) *allHandlers {
	return &allHandlers{
		billingHandler: handlers.NewBillingHandler(
			ucs.registerBillingUC,
			ucs.getBillingKeyUC,
			ucs.removeBillingKeyUC,
			log,
		),
		subscriptionHandler: handlers.NewSubscriptionHandler(
			ucs.listSubscriptionsUC,
			ucs.getActiveSubscriptionUC,
			ucs.changeStatusUC,
			ucs.deleteSubscriptionUC,
			log,
		),
		planHandler: handlers.NewPlanHandler(
			ucs.listPlansUC,
			ucs.getPlanUC,
			ucs.createPlanUC,
			ucs.updatePlanUC,
			ucs.deletePlanUC,
			log,
		),
		entitlementHandler: handlers.NewEntitlementHandler(
			ucs.getLimitsUC,
			ucs.checkStorageUC,
			ucs.checkMembersUC,
			ucs.setStorageUsageUC,
			log,
		),
		healthHandler: handlers.NewHealthHandler(log, checks...),
	}
}
