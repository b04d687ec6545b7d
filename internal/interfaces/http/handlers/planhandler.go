package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/application/plan/dto"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

type listPlansUseCase interface {
	Execute(ctx context.Context) ([]*dto.PlanDTO, error)
}

type getPlanUseCase interface {
	Execute(ctx context.Context, planID uint) (*dto.PlanDTO, error)
}

type createPlanUseCase interface {
	Execute(ctx context.Context, req dto.PlanRequest) (*dto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, planID uint, req dto.PlanRequest) (*dto.PlanDTO, error)
}

type deletePlanUseCase interface {
	Execute(ctx context.Context, planID uint) error
}

type PlanHandler struct {
	listUC   listPlansUseCase
	getUC    getPlanUseCase
	createUC createPlanUseCase
	updateUC updatePlanUseCase
	deleteUC deletePlanUseCase
	logger   logger.Interface
}

func NewPlanHandler(
	listUC listPlansUseCase,
	getUC getPlanUseCase,
	createUC createPlanUseCase,
	updateUC updatePlanUseCase,
	deleteUC deletePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		listUC:   listUC,
		getUC:    getUC,
		createUC: createUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		logger:   logger,
	}
}

// @Summary List plans
// @Description List all plans ordered by price
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]dto.PlanDTO}
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.listUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plans)
}

// @Summary Get plan
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id", "plan ID")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", p)
}

// @Summary Create plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security Bearer
// @Param plan body dto.PlanRequest true "Plan data"
// @Success 201 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /admin/plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	p, err := h.createUC.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, p, "Plan created successfully")
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id", "plan ID")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan", "plan_id", id, "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	p, err := h.updateUC.Execute(c.Request.Context(), id, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", p)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id", "plan ID")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
