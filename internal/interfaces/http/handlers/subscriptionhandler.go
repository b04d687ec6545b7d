package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/application/subscription/dto"
	"github.com/pecal-inc/pecal/internal/application/subscription/usecases"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

type listSubscriptionsUseCase interface {
	Execute(ctx context.Context, query usecases.ListSubscriptionsQuery) ([]*dto.SubscriptionDTO, error)
}

type getActiveSubscriptionUseCase interface {
	Execute(ctx context.Context, query usecases.ListSubscriptionsQuery) (*dto.SubscriptionDTO, error)
}

type changeStatusUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangeStatusCommand) (*dto.SubscriptionDTO, error)
}

type deleteSubscriptionUseCase interface {
	Execute(ctx context.Context, subscriptionID uint) error
}

type SubscriptionHandler struct {
	listUC      listSubscriptionsUseCase
	getActiveUC getActiveSubscriptionUseCase
	changeUC    changeStatusUseCase
	deleteUC    deleteSubscriptionUseCase
	logger      logger.Interface
}

func NewSubscriptionHandler(
	listUC listSubscriptionsUseCase,
	getActiveUC getActiveSubscriptionUseCase,
	changeUC changeStatusUseCase,
	deleteUC deleteSubscriptionUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		listUC:      listUC,
		getActiveUC: getActiveUC,
		changeUC:    changeUC,
		deleteUC:    deleteUC,
		logger:      logger,
	}
}

// List handles GET /subscriptions. With active=true only the active row
// (or null) is returned.
//
// @Summary		List subscriptions
// @Tags			subscriptions
// @Produce		json
// @Security		Bearer
// @Param			owner_id	query		int		true	"Owner ID"
// @Param			owner_type	query		string	true	"Owner type"	Enums(team, personal)
// @Param			active		query		bool	false	"Only the active subscription"
// @Success		200			{object}	utils.APIResponse{data=[]dto.SubscriptionDTO}
// @Failure		400			{object}	utils.APIResponse	"Bad request"
// @Failure		403			{object}	utils.APIResponse	"Forbidden"
// @Router			/subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	ownerID, ownerType, err := parseOwner(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	query := usecases.ListSubscriptionsQuery{
		MemberID:  middleware.MemberID(c),
		OwnerID:   ownerID,
		OwnerType: ownerType,
	}

	if c.Query("active") == "true" {
		active, err := h.getActiveUC.Execute(c.Request.Context(), query)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		if active == nil {
			utils.SuccessResponse(c, http.StatusOK, "No active subscription", nil)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", active)
		return
	}

	list, err := h.listUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", list)
}

// UpdateStatus handles PUT /subscriptions.
//
// @Summary		Change subscription status
// @Tags			subscriptions
// @Accept			json
// @Produce		json
// @Security		Bearer
// @Param			status	body		dto.UpdateStatusRequest						true	"New status"
// @Success		200		{object}	utils.APIResponse{data=dto.SubscriptionDTO}	"Subscription updated"
// @Failure		400		{object}	utils.APIResponse							"Invalid transition"
// @Failure		403		{object}	utils.APIResponse							"Forbidden"
// @Failure		404		{object}	utils.APIResponse							"Subscription not found"
// @Failure		409		{object}	utils.APIResponse							"Subscription changed concurrently"
// @Router			/subscriptions [put]
func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for subscription status", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	result, err := h.changeUC.Execute(c.Request.Context(), usecases.ChangeStatusCommand{
		MemberID:       middleware.MemberID(c),
		SubscriptionID: req.SubscriptionID,
		Status:         vo.SubscriptionStatus(req.Status),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription updated", result)
}

// Delete handles DELETE /admin/subscriptions/:id.
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id", "subscription ID")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("subscription deleted by admin", "subscription_id", id, "admin_id", middleware.MemberID(c))
	utils.NoContentResponse(c)
}
