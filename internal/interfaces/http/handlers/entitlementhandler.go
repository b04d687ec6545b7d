package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pecal-inc/pecal/internal/application/entitlement/dto"
	"github.com/pecal-inc/pecal/internal/application/entitlement/usecases"
	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/interfaces/http/middleware"
	"github.com/pecal-inc/pecal/internal/shared/errors"
	"github.com/pecal-inc/pecal/internal/shared/logger"
	"github.com/pecal-inc/pecal/internal/shared/utils"
)

type getLimitsUseCase interface {
	Execute(ctx context.Context, query usecases.OwnerQuery) (*dto.LimitsDTO, error)
}

type checkStorageUseCase interface {
	Execute(ctx context.Context, query usecases.CheckStorageQuery) (*dto.StorageCheckDTO, error)
}

type checkMembersUseCase interface {
	Execute(ctx context.Context, memberID, teamID uint) (*dto.MemberCheckDTO, error)
}

type setStorageUsageUseCase interface {
	Execute(ctx context.Context, cmd usecases.SetStorageUsageCommand) error
}

type EntitlementHandler struct {
	limitsUC  getLimitsUseCase
	storageUC checkStorageUseCase
	membersUC checkMembersUseCase
	usageUC   setStorageUsageUseCase
	logger    logger.Interface
}

func NewEntitlementHandler(
	limitsUC getLimitsUseCase,
	storageUC checkStorageUseCase,
	membersUC checkMembersUseCase,
	usageUC setStorageUsageUseCase,
	logger logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		limitsUC:  limitsUC,
		storageUC: storageUC,
		membersUC: membersUC,
		usageUC:   usageUC,
		logger:    logger,
	}
}

func (h *EntitlementHandler) ownerQuery(c *gin.Context) (usecases.OwnerQuery, error) {
	ownerID, ownerType, err := parseOwner(c)
	if err != nil {
		return usecases.OwnerQuery{}, err
	}
	return usecases.OwnerQuery{
		MemberID:  middleware.MemberID(c),
		OwnerID:   ownerID,
		OwnerType: ownerType,
	}, nil
}

// GetLimits handles GET /entitlements.
func (h *EntitlementHandler) GetLimits(c *gin.Context) {
	query, err := h.ownerQuery(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	limits, err := h.limitsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", limits)
}

// CheckStorage handles GET /entitlements/storage/check. With enforce=true a
// denied check is answered with 403.
func (h *EntitlementHandler) CheckStorage(c *gin.Context) {
	query, err := h.ownerQuery(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var additional float64
	if raw := c.Query("additional_mb"); raw != "" {
		additional, err = strconv.ParseFloat(raw, 64)
		if err != nil || additional < 0 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid additional_mb"))
			return
		}
	}

	result, err := h.storageUC.Execute(c.Request.Context(), usecases.CheckStorageQuery{
		OwnerQuery:   query,
		AdditionalMB: additional,
		Enforce:      c.Query("enforce") == "true",
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CheckMembers handles GET /entitlements/members/check.
func (h *EntitlementHandler) CheckMembers(c *gin.Context) {
	teamID, err := parseUintQuery(c, "team_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.membersUC.Execute(c.Request.Context(), middleware.MemberID(c), teamID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// SetStorageUsage handles PUT /storage-usage.
func (h *EntitlementHandler) SetStorageUsage(c *gin.Context) {
	var req dto.SetStorageUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for storage usage", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	err := h.usageUC.Execute(c.Request.Context(), usecases.SetStorageUsageCommand{
		OwnerQuery: usecases.OwnerQuery{
			MemberID:  middleware.MemberID(c),
			OwnerID:   req.OwnerID,
			OwnerType: vo.OwnerType(req.OwnerType),
		},
		UsedMB: req.UsedMB,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Storage usage updated", nil)
}
