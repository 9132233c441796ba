package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lmsconsole/backend/curriculum"
	"lmsconsole/backend/middleware"
	"lmsconsole/backend/utils"
)

type CurriculumController struct {
	Content *curriculum.Service
}

func NewCurriculumController(content *curriculum.Service) *CurriculumController {
	return &CurriculumController{Content: content}
}

func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	return nil
}

// reorderBody is the request of the reorder endpoints; the parent comes from the path.
type reorderBody struct {
	ChildID   string               `json:"childId"`
	Direction curriculum.Direction `json:"direction"`
}

// ListCourses godoc
// @Summary List courses
// @Tags admin-curriculum
// @Security BearerAuth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/courses [get]
func (cc *CurriculumController) ListCourses(c *fiber.Ctx) error {
	courses, err := cc.Content.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return utils.OK(c, courses, fiber.Map{"total": len(courses)})
}

// CreateCourse godoc
// @Summary Create a course
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param course body curriculum.CreateCourse true "Course data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/courses [post]
func (cc *CurriculumController) CreateCourse(c *fiber.Ctx) error {
	var cmd curriculum.CreateCourse
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	if cmd.OwnerID == "" {
		cmd.OwnerID = middleware.CurrentClaims(c).UserID
	}

	course, err := cc.Content.CreateCourse(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return utils.Created(c, course)
}

// GetCourse godoc
// @Summary Get a course
// @Tags admin-curriculum
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin/courses/{id} [get]
func (cc *CurriculumController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.Content.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.OK(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param course body curriculum.UpdateCourse true "Fields to change"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/courses/{id} [put]
func (cc *CurriculumController) UpdateCourse(c *fiber.Ctx) error {
	var cmd curriculum.UpdateCourse
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	course, err := cc.Content.UpdateCourse(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return err
	}
	return utils.Message(c, "Course updated", course)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Deletes the course document. With purge=true its sections, lessons and quizzes are deleted first.
// @Tags admin-curriculum
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param purge query bool false "Delete the course content too"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin/courses/{id} [delete]
func (cc *CurriculumController) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")
	if c.QueryBool("purge") {
		if err := cc.Content.PurgeCourseContent(c.UserContext(), id); err != nil {
			return err
		}
	}
	if err := cc.Content.DeleteCourse(c.UserContext(), id); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// GetCurriculum godoc
// @Summary Get the curriculum tree of a course
// @Tags admin-curriculum
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin/courses/{id}/curriculum [get]
func (cc *CurriculumController) GetCurriculum(c *fiber.Ctx) error {
	tree, err := cc.Content.LoadCurriculum(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.OK(c, tree)
}

// CreateSection godoc
// @Summary Add a section to a course
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param section body curriculum.CreateSection true "Section data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/courses/{id}/sections [post]
func (cc *CurriculumController) CreateSection(c *fiber.Ctx) error {
	var cmd curriculum.CreateSection
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	cmd.CourseID = c.Params("id")

	section, err := cc.Content.CreateSection(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return utils.Created(c, section)
}

// ReorderSection godoc
// @Summary Move a section up or down
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Param id path string true "Course ID"
// @Param move body reorderBody true "Section and direction"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /admin/courses/{id}/sections/reorder [post]
func (cc *CurriculumController) ReorderSection(c *fiber.Ctx) error {
	var body reorderBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	cmd := curriculum.Reorder{ParentID: c.Params("id"), ChildID: body.ChildID, Direction: body.Direction}
	if err := cc.Content.ReorderSection(c.UserContext(), cmd); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param section body curriculum.UpdateSection true "Fields to change"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/sections/{id} [put]
func (cc *CurriculumController) UpdateSection(c *fiber.Ctx) error {
	var cmd curriculum.UpdateSection
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	section, err := cc.Content.UpdateSection(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return err
	}
	return utils.Message(c, "Section updated", section)
}

// DeleteSection godoc
// @Summary Delete a section with its lessons and quizzes
// @Tags admin-curriculum
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 204
// @Router /admin/sections/{id} [delete]
func (cc *CurriculumController) DeleteSection(c *fiber.Ctx) error {
	if err := cc.Content.DeleteSection(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// CreateLesson godoc
// @Summary Add a lesson to a section
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param lesson body curriculum.CreateLesson true "Lesson data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/sections/{id}/lessons [post]
func (cc *CurriculumController) CreateLesson(c *fiber.Ctx) error {
	var cmd curriculum.CreateLesson
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	cmd.SectionID = c.Params("id")

	lesson, err := cc.Content.CreateLesson(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return utils.Created(c, lesson)
}

// ReorderLesson godoc
// @Summary Move a lesson up or down within its section
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Param id path string true "Section ID"
// @Param move body reorderBody true "Lesson and direction"
// @Success 204
// @Router /admin/sections/{id}/lessons/reorder [post]
func (cc *CurriculumController) ReorderLesson(c *fiber.Ctx) error {
	var body reorderBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	cmd := curriculum.Reorder{ParentID: c.Params("id"), ChildID: body.ChildID, Direction: body.Direction}
	if err := cc.Content.ReorderLesson(c.UserContext(), cmd); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// UpdateLesson godoc
// @Summary Update a lesson
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param lesson body curriculum.UpdateLesson true "Fields to change"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/lessons/{id} [put]
func (cc *CurriculumController) UpdateLesson(c *fiber.Ctx) error {
	var cmd curriculum.UpdateLesson
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	lesson, err := cc.Content.UpdateLesson(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return err
	}
	return utils.Message(c, "Lesson updated", lesson)
}

// DeleteLesson godoc
// @Summary Delete a lesson with its quizzes
// @Tags admin-curriculum
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /admin/lessons/{id} [delete]
func (cc *CurriculumController) DeleteLesson(c *fiber.Ctx) error {
	if err := cc.Content.DeleteLesson(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return utils.NoContent(c)
}

// CreateQuiz godoc
// @Summary Add a quiz to a lesson
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param quiz body curriculum.CreateQuiz true "Quiz data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/lessons/{id}/quizzes [post]
func (cc *CurriculumController) CreateQuiz(c *fiber.Ctx) error {
	var cmd curriculum.CreateQuiz
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	cmd.LessonID = c.Params("id")

	quiz, err := cc.Content.CreateQuiz(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return utils.Created(c, quiz)
}

// UpdateQuiz godoc
// @Summary Update a quiz
// @Tags admin-curriculum
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param quiz body curriculum.UpdateQuiz true "Fields to change"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/quizzes/{id} [put]
func (cc *CurriculumController) UpdateQuiz(c *fiber.Ctx) error {
	var cmd curriculum.UpdateQuiz
	if err := parseBody(c, &cmd); err != nil {
		return err
	}
	quiz, err := cc.Content.UpdateQuiz(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return err
	}
	return utils.Message(c, "Quiz updated", quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Tags admin-curriculum
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 204
// @Router /admin/quizzes/{id} [delete]
func (cc *CurriculumController) DeleteQuiz(c *fiber.Ctx) error {
	if err := cc.Content.DeleteQuiz(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return utils.NoContent(c)
}
