package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	vo "github.com/pecal-inc/pecal/internal/domain/subscription/valueobjects"
	"github.com/pecal-inc/pecal/internal/shared/errors"
)

func parseIDParam(c *gin.Context, name, label string) (uint, error) {
	idStr := c.Param(name)
	if idStr == "" {
		return 0, errors.NewValidationError(label + " is required")
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("Invalid " + label + " format")
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.NewValidationError(name + " is required")
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, errors.NewValidationError("invalid " + name)
	}
	return uint(v), nil
}

// parseOwner reads owner_id and owner_type from the query string.
func parseOwner(c *gin.Context) (uint, vo.OwnerType, error) {
	ownerID, err := parseUintQuery(c, "owner_id")
	if err != nil {
		return 0, "", err
	}
	ownerType := vo.OwnerType(c.Query("owner_type"))
	if !ownerType.IsValid() {
		return 0, "", errors.NewValidationError("owner_type must be team or personal")
	}
	return ownerID, ownerType, nil
}

func bindError(err error) error {
	return errors.NewValidationError("invalid request body", err.Error())
}
