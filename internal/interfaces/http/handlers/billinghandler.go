package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/application/billing/dto"
	"github.com/pecal-inc/pecal/internal/application/billing/usecases"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

type registerBillingUseCase interface {
	Execute(ctx context.Context, cmd usecases.RegisterBillingCommand) (*usecases.RegisterBillingResult, error)
}

type getBillingKeyUseCase interface {
	Execute(ctx context.Context, memberID uint) (*dto.BillingKeyDTO, error)
}

type removeBillingKeyUseCase interface {
	Execute(ctx context.Context, memberID uint) error
}

type BillingHandler struct {
	registerUC registerBillingUseCase
	getKeyUC   getBillingKeyUseCase
	removeUC   removeBillingKeyUseCase
	logger     logger.Interface
}

func NewBillingHandler(
	registerUC registerBillingUseCase,
	getKeyUC getBillingKeyUseCase,
	removeUC removeBillingKeyUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		registerUC: registerUC,
		getKeyUC:   getKeyUC,
		removeUC:   removeUC,
		logger:     logger,
	}
}

// Register handles POST /billing/register.
//
// @Summary		Register billing
// @Description	Register a card as billing key, open the subscription and approve the first charge
// @Tags			billing
// @Accept			json
// @Produce		json
// @Security		Bearer
// @Param			billing	body		dto.RegisterBillingRequest								true	"Card and plan"
// @Success		201		{object}	utils.APIResponse{data=dto.RegisterBillingResponse}	"Billing registered successfully"
// @Failure		400		{object}	utils.APIResponse										"Bad request"
// @Failure		401		{object}	utils.APIResponse										"Unauthorized"
// @Failure		403		{object}	utils.APIResponse										"Not allowed to bill this owner"
// @Failure		404		{object}	utils.APIResponse										"Plan not found"
// @Failure		429		{object}	utils.APIResponse										"Too many attempts"
// @Failure		500		{object}	utils.APIResponse										"Gateway or internal error"
// @Router			/billing/register [post]
func (h *BillingHandler) Register(c *gin.Context) {
	var req dto.RegisterBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// the binding error never echoes card fields
		h.logger.Warnw("invalid request body for billing register", "member_id", middleware.MemberID(c))
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	result, err := h.registerUC.Execute(c.Request.Context(), usecases.RegisterBillingCommand{
		MemberID:  middleware.MemberID(c),
		CardNo:    req.CardNo,
		ExpYear:   req.ExpYear,
		ExpMonth:  req.ExpMonth,
		IDNo:      req.IDNo,
		CardPw:    req.CardPw,
		PlanID:    req.PlanID,
		OwnerID:   req.OwnerID,
		OwnerType: vo.OwnerType(req.OwnerType),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.RegisterBillingResponse{
		TID:            result.TID,
		SubscriptionID: result.SubscriptionID,
		BillingKeyID:   result.BillingKeyID,
	}, "Billing registered successfully")
}

// GetBillingKey handles GET /billing/key and GET /billing/register.
//
// @Summary		Get billing key
// @Description	Get the member's active billing key, or null
// @Tags			billing
// @Produce		json
// @Security		Bearer
// @Success		200	{object}	utils.APIResponse{data=dto.BillingKeyDTO}
// @Failure		401	{object}	utils.APIResponse	"Unauthorized"
// @Router			/billing/key [get]
func (h *BillingHandler) GetBillingKey(c *gin.Context) {
	key, err := h.getKeyUC.Execute(c.Request.Context(), middleware.MemberID(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if key == nil {
		utils.SuccessResponse(c, http.StatusOK, "No billing key registered", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", key)
}

// RemoveBillingKey handles DELETE /billing/remove.
//
// @Summary		Remove billing key
// @Tags			billing
// @Produce		json
// @Security		Bearer
// @Success		200	{object}	utils.APIResponse	"Billing key removed"
// @Failure		401	{object}	utils.APIResponse	"Unauthorized"
// @Failure		404	{object}	utils.APIResponse	"No active billing key"
// @Router			/billing/remove [delete]
func (h *BillingHandler) RemoveBillingKey(c *gin.Context) {
	if err := h.removeUC.Execute(c.Request.Context(), middleware.MemberID(c)); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Billing key removed", nil)
}
