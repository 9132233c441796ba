package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lmsconsole/backend/access"
	"lmsconsole/backend/middleware"
	"lmsconsole/backend/progress"
	"lmsconsole/backend/utils"
)

type ProgressController struct {
	Progress *progress.Service
	Checker  *access.Checker
}

func NewProgressController(p *progress.Service, checker *access.Checker) *ProgressController {
	return &ProgressController{Progress: p, Checker: checker}
}

// GetLessonAccess godoc
// @Summary Check whether the caller may open a lesson
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id}/access [get]
func (pc *ProgressController) GetLessonAccess(c *fiber.Ctx) error {
	userID := middleware.CurrentClaims(c).UserID
	decision, err := pc.Checker.LessonAccess(c.UserContext(), userID, c.Params("id"), time.Now().UTC())
	if err != nil {
		return err
	}
	return utils.OK(c, decision)
}

// RecordTelemetry godoc
// @Summary Report watch progress of a lesson
// @Tags student
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param telemetry body progress.Telemetry true "Watch report"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /lessons/{id}/telemetry [post]
func (pc *ProgressController) RecordTelemetry(c *fiber.Ctx) error {
	var t progress.Telemetry
	if err := parseBody(c, &t); err != nil {
		return err
	}
	t.UserID = middleware.CurrentClaims(c).UserID
	t.LessonID = c.Params("id")

	record, err := pc.Progress.RecordTelemetry(c.UserContext(), t)
	if err != nil {
		return err
	}
	return utils.OK(c, record)
}

// MarkComplete godoc
// @Summary Mark a manual lesson complete
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /lessons/{id}/complete [post]
func (pc *ProgressController) MarkComplete(c *fiber.Ctx) error {
	record, err := pc.Progress.MarkComplete(c.UserContext(), middleware.CurrentClaims(c).UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return utils.Message(c, "Lesson completed", record)
}

// SubmitQuizAttempt godoc
// @Summary Record a quiz attempt
// @Tags student
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param attempt body progress.QuizSubmission true "Score"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (pc *ProgressController) SubmitQuizAttempt(c *fiber.Ctx) error {
	var sub progress.QuizSubmission
	if err := parseBody(c, &sub); err != nil {
		return err
	}
	sub.UserID = middleware.CurrentClaims(c).UserID
	sub.QuizID = c.Params("id")

	attempt, err := pc.Progress.RecordQuizAttempt(c.UserContext(), sub)
	if err != nil {
		return err
	}
	return utils.Created(c, attempt)
}

// GetCourseProgress godoc
// @Summary Progress of the caller in a course
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /courses/{id}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	userID := middleware.CurrentClaims(c).UserID
	summary, err := pc.Progress.StudentProgress(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}
	records, err := pc.Progress.LessonProgress(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"summary": summary, "lessons": records})
}

// GetCertificate godoc
// @Summary Certificate eligibility of the caller
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /courses/{id}/certificate [get]
func (pc *ProgressController) GetCertificate(c *fiber.Ctx) error {
	cert, err := pc.Progress.CertificateEligibility(c.UserContext(), c.Params("id"), middleware.CurrentClaims(c).UserID)
	if err != nil {
		return err
	}
	return utils.OK(c, cert)
}

// GetRoster godoc
// @Summary Progress of every student in a course
// @Tags admin-progress
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/courses/{id}/roster [get]
func (pc *ProgressController) GetRoster(c *fiber.Ctx) error {
	roster, err := pc.Progress.Roster(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.OK(c, roster, fiber.Map{"total": len(roster)})
}
