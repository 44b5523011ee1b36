package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"questforge/internal/errors"
	"questforge/internal/service"
)

// AchievementHandler handles achievement catalog endpoints.
type AchievementHandler struct {
	achievementService service.AchievementService
}

// NewAchievementHandler creates a new achievement handler.
func NewAchievementHandler(achievementService service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// ListAchievements godoc
// @Summary List the catalog with the caller's unlocked status
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AchievementView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /achievements [get]
func (h *AchievementHandler) ListAchievements(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	achievements, err := h.achievementService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, achievements)
}

// GetAchievement godoc
// @Summary Get a catalog entry with the caller's unlocked status
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Achievement ID"
// @Success 200 {object} service.AchievementView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /achievements/{id} [get]
func (h *AchievementHandler) GetAchievement(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid achievement id",
			Code:  "INVALID_ID",
		})
	}

	achievement, err := h.achievementService.GetForUser(c.Request().Context(), userID, uint(id))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, achievement)
}
