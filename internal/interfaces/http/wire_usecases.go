package http

import (
	billingUsecases "github.com/pecal-inc/pecal/internal/application/billing/usecases"
	entitlementUsecases "github.com/pecal-inc/pecal/internal/application/entitlement/usecases"
	planUsecases "github.com/pecal-inc/pecal/internal/application/plan/usecases"
	subscriptionUsecases "github.com/pecal-inc/pecal/internal/application/subscription/usecases"
	"github.com/pecal-inc/pecal/internal/infrastructure/config"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// allUseCases holds all use case instances.
type allUseCases struct {
	// Billing
	registerBillingUC         *billingUsecases.RegisterBillingUseCase
	getBillingKeyUC           *billingUsecases.GetBillingKeyUseCase
	removeBillingKeyUC        *billingUsecases.RemoveBillingKeyUseCase
	processDueSubscriptionsUC *billingUsecases.ProcessDueSubscriptionsUseCase

	// Subscription
	listSubscriptionsUC     *subscriptionUsecases.ListSubscriptionsUseCase
	getActiveSubscriptionUC *subscriptionUsecases.GetActiveSubscriptionUseCase
	changeStatusUC          *subscriptionUsecases.ChangeStatusUseCase
	deleteSubscriptionUC    *subscriptionUsecases.DeleteSubscriptionUseCase

	// Plan
	listPlansUC  *planUsecases.ListPlansUseCase
	getPlanUC    *planUsecases.GetPlanUseCase
	createPlanUC *planUsecases.CreatePlanUseCase
	updatePlanUC *planUsecases.UpdatePlanUseCase
	deletePlanUC *planUsecases.DeletePlanUseCase

	// Entitlement
	getLimitsUC       *entitlementUsecases.GetLimitsUseCase
	checkStorageUC    *entitlementUsecases.CheckStorageUseCase
	checkMembersUC    *entitlementUsecases.CheckMembersUseCase
	setStorageUsageUC *entitlementUsecases.SetStorageUsageUseCase
}

func newUseCases(repos *repositories, svcs *infraServices, cfg *config.Config, log logger.Interface) *allUseCases {
	ucs := &allUseCases{}

	settings := billingUsecases.BillingSettings{
		GoodsNamePrefix: cfg.Billing.GoodsNamePrefix,
		MaxRetryCount:   cfg.Billing.MaxRetryCount,
	}
	billingLog := log.Named("billing")

	ucs.registerBillingUC = billingUsecases.NewRegisterBillingUseCase(
		svcs.gateway,
		repos.planRepo,
		repos.billingKeyRepo,
		repos.subscriptionRepo,
		repos.paymentRepo,
		svcs.ownerGuard,
		svcs.txMgr,
		svcs.alerter,
		svcs.metrics,
		settings,
		billingLog,
	)
	ucs.getBillingKeyUC = billingUsecases.NewGetBillingKeyUseCase(repos.billingKeyRepo, billingLog)
	ucs.removeBillingKeyUC = billingUsecases.NewRemoveBillingKeyUseCase(svcs.gateway, repos.billingKeyRepo, billingLog)
	ucs.processDueSubscriptionsUC = billingUsecases.NewProcessDueSubscriptionsUseCase(
		svcs.gateway,
		repos.subscriptionRepo,
		repos.planRepo,
		repos.billingKeyRepo,
		repos.paymentRepo,
		svcs.chargeLock,
		svcs.alerter,
		svcs.metrics,
		settings,
		billingLog.Named("recurring"),
	)

	subscriptionLog := log.Named("subscription")
	ucs.listSubscriptionsUC = subscriptionUsecases.NewListSubscriptionsUseCase(repos.subscriptionRepo, svcs.ownerGuard, subscriptionLog)
	ucs.getActiveSubscriptionUC = subscriptionUsecases.NewGetActiveSubscriptionUseCase(repos.subscriptionRepo, svcs.ownerGuard, subscriptionLog)
	ucs.changeStatusUC = subscriptionUsecases.NewChangeStatusUseCase(repos.subscriptionRepo, svcs.ownerGuard, subscriptionLog)
	ucs.deleteSubscriptionUC = subscriptionUsecases.NewDeleteSubscriptionUseCase(repos.subscriptionRepo, subscriptionLog)

	planLog := log.Named("plan")
	ucs.listPlansUC = planUsecases.NewListPlansUseCase(repos.planRepo, planLog)
	ucs.getPlanUC = planUsecases.NewGetPlanUseCase(repos.planRepo, planLog)
	ucs.createPlanUC = planUsecases.NewCreatePlanUseCase(repos.planRepo, planLog)
	ucs.updatePlanUC = planUsecases.NewUpdatePlanUseCase(repos.planRepo, planLog)
	ucs.deletePlanUC = planUsecases.NewDeletePlanUseCase(repos.planRepo, planLog)

	entitlementLog := log.Named("entitlement")
	resolver := entitlementUsecases.NewLimitsResolver(repos.subscriptionRepo, repos.planRepo, entitlementUsecases.FreePlanLimits{
		MaxMembers:   cfg.Billing.FreePlan.MaxMembers,
		MaxStorageMB: cfg.Billing.FreePlan.MaxStorageMB,
	})
	ucs.getLimitsUC = entitlementUsecases.NewGetLimitsUseCase(resolver, svcs.ownerGuard, entitlementLog)
	ucs.checkStorageUC = entitlementUsecases.NewCheckStorageUseCase(resolver, repos.storageUsageRepo, svcs.ownerGuard, entitlementLog)
	ucs.checkMembersUC = entitlementUsecases.NewCheckMembersUseCase(resolver, repos.teamMembership, svcs.ownerGuard, entitlementLog)
	ucs.setStorageUsageUC = entitlementUsecases.NewSetStorageUsageUseCase(repos.storageUsageRepo, svcs.ownerGuard, entitlementLog)

	return ucs
}
