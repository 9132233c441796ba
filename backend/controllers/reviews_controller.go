package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"lmsconsole/backend/middleware"
	"lmsconsole/backend/models"
	"lmsconsole/backend/reviews"
	"lmsconsole/backend/utils"
)

type ReviewsController struct {
	Reviews *reviews.Service
}

func NewReviewsController(r *reviews.Service) *ReviewsController {
	return &ReviewsController{Reviews: r}
}

// SubmitReview godoc
// @Summary Review a course
// @Tags student
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param review body reviews.Submission true "Rating and comment"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /courses/{id}/reviews [post]
func (rc *ReviewsController) SubmitReview(c *fiber.Ctx) error {
	var sub reviews.Submission
	if err := parseBody(c, &sub); err != nil {
		return err
	}
	sub.CourseID = c.Params("id")
	sub.UserID = middleware.CurrentClaims(c).UserID

	review, err := rc.Reviews.Submit(c.UserContext(), sub)
	if err != nil {
		return err
	}
	return utils.Created(c, review)
}

// ListReviews godoc
// @Summary Reviews of a course
// @Tags admin-reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param state query string false "pending, approved or rejected"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/courses/{id}/reviews [get]
func (rc *ReviewsController) ListReviews(c *fiber.Ctx) error {
	state := c.Query("state")
	switch state {
	case "", models.ReviewPending, models.ReviewApproved, models.ReviewRejected:
	default:
		return utils.BadRequest(c, "state must be pending, approved or rejected")
	}

	list, err := rc.Reviews.List(c.UserContext(), c.Params("id"), state)
	if err != nil {
		return err
	}
	return utils.OK(c, list, fiber.Map{"total": len(list)})
}

// ApproveReview godoc
// @Summary Approve a review
// @Tags admin-reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/reviews/{id}/approve [put]
func (rc *ReviewsController) ApproveReview(c *fiber.Ctx) error {
	return rc.moderate(c, rc.Reviews.Approve)
}

// RejectReview godoc
// @Summary Reject a review
// @Tags admin-reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/reviews/{id}/reject [put]
func (rc *ReviewsController) RejectReview(c *fiber.Ctx) error {
	return rc.moderate(c, rc.Reviews.Reject)
}

func (rc *ReviewsController) moderate(c *fiber.Ctx, action func(ctx context.Context, id string) (models.Review, error)) error {
	review, err := action(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	rating, err := rc.Reviews.RecomputeAverage(c.UserContext(), review.CourseID)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"review": review, "rating": rating})
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags admin-reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/reviews/{id} [delete]
func (rc *ReviewsController) DeleteReview(c *fiber.Ctx) error {
	review, err := rc.Reviews.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err = rc.Reviews.Delete(c.UserContext(), review.ID); err != nil {
		return err
	}
	rating, err := rc.Reviews.RecomputeAverage(c.UserContext(), review.CourseID)
	if err != nil {
		return err
	}
	return utils.Message(c, "Review deleted", rating)
}
