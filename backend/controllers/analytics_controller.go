package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lmsconsole/backend/analytics"
	"lmsconsole/backend/utils"
)

type AnalyticsController struct {
	Analytics *analytics.Service
}

func NewAnalyticsController(a *analytics.Service) *AnalyticsController {
	return &AnalyticsController{Analytics: a}
}

// GetCourseAnalytics godoc
// @Summary Analytics snapshot of a course
// @Description Recomputed on every call. revenueIsEstimate marks revenue derived from enrollments * price.
// @Tags admin-analytics
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param window_days query int false "Days in the engagement series (default from config)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin/courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	// Получаем параметры периода
	windowDays := c.QueryInt("window_days", 0)
	if windowDays < 0 || windowDays > 365 {
		return utils.BadRequest(c, "window_days must be between 1 and 365")
	}

	snapshot, err := ac.Analytics.Compute(c.UserContext(), c.Params("id"), windowDays)
	if err != nil {
		return err
	}
	return utils.OK(c, snapshot)
}
