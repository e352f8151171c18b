package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

// respondServiceError maps domain sentinels to 4xx and hides anything else behind a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrProductUnavailable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
		utils.RespondErrorMessage(c, http.StatusInternalServerError, "internal server error")
	}
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}
