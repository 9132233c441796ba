// Package reviews moderates student reviews and keeps the course rating in line with the
// approved ones.
package reviews

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

var ErrAlreadyReviewed = errors.New("student already reviewed this course")

type Submission struct {
	CourseID string `json:"courseId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName" validate:"max=100"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// Rating is the course figure written back by RecomputeAverage.
type Rating struct {
	CourseID      string  `json:"courseId"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

type Service struct {
	store  store.Store
	logger *utils.Logger
	now    func() time.Time
}

func NewService(s store.Store, logger *utils.Logger) *Service {
	return &Service{store: s, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Submit stores a pending review. Each student reviews a course once.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Review, error) {
	if err := utils.Validate.Struct(sub); err != nil {
		return models.Review{}, err
	}
	var course models.Course
	if err := s.store.Get(ctx, store.Courses, sub.CourseID, &course); err != nil {
		return models.Review{}, errors.Wrapf(err, "course %s", sub.CourseID)
	}

	n, err := s.store.Count(ctx, store.Reviews,
		[]store.Filter{store.Eq("courseId", sub.CourseID), store.Eq("userId", sub.UserID)})
	if err != nil {
		return models.Review{}, errors.Wrap(err, "checking reviews")
	}
	if n > 0 {
		return models.Review{}, utils.NewValidationError(ErrAlreadyReviewed, utils.FieldError{
			Field: "userId",
			Error: ErrAlreadyReviewed.Error(),
		})
	}

	review := models.Review{
		CourseID:  sub.CourseID,
		UserID:    sub.UserID,
		UserName:  utils.CleanString(sub.UserName),
		Rating:    sub.Rating,
		Comment:   utils.CleanString(sub.Comment),
		CreatedAt: s.now(),
	}
	id, err := s.store.Create(ctx, store.Reviews, review)
	if err != nil {
		return models.Review{}, errors.Wrap(err, "creating review")
	}
	review.ID = id
	return review, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Review, error) {
	var review models.Review
	if err := s.store.Get(ctx, store.Reviews, id, &review); err != nil {
		return models.Review{}, errors.Wrapf(err, "review %s", id)
	}
	return review, nil
}

// List returns the course's reviews, newest first, optionally only those in state.
func (s *Service) List(ctx context.Context, courseID, state string) ([]models.Review, error) {
	var all []models.Review
	err := s.store.Query(ctx, store.Reviews, &all,
		[]store.Filter{store.Eq("courseId", courseID)}, store.Desc("createdAt"))
	if err != nil {
		return nil, errors.Wrap(err, "listing reviews")
	}

	out := make([]models.Review, 0, len(all))
	for _, r := range all {
		if state == "" || r.State() == state {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) Approve(ctx context.Context, id string) (models.Review, error) {
	return s.moderate(ctx, id, true)
}

func (s *Service) Reject(ctx context.Context, id string) (models.Review, error) {
	return s.moderate(ctx, id, false)
}

// moderate moves the review to approved or rejected. Already being there is a no-op.
func (s *Service) moderate(ctx context.Context, id string, approve bool) (models.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return models.Review{}, err
	}

	target := models.ReviewRejected
	if approve {
		target = models.ReviewApproved
	}
	if review.State() == target {
		return review, nil
	}

	now := s.now()
	if err = s.store.Update(ctx, store.Reviews, id, store.Patch{"approved": approve, "moderatedAt": now}); err != nil {
		return models.Review{}, errors.Wrapf(err, "moderating review %s", id)
	}
	review.Approved = approve
	review.ModeratedAt = &now
	return review, nil
}

// Delete removes the review. The caller recomputes the course average afterwards.
func (s *Service) Delete(ctx context.Context, id string) error {
	return errors.Wrapf(s.store.Delete(ctx, store.Reviews, id), "deleting review %s", id)
}

// Average returns the mean of approved ratings rounded to one decimal, 0 when there are none.
func Average(reviews []models.Review) (avg float64, count int) {
	sum := 0
	for _, r := range reviews {
		if !r.Approved {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10, count
}

// RecomputeAverage recomputes the course rating from its approved reviews and writes it back.
func (s *Service) RecomputeAverage(ctx context.Context, courseID string) (Rating, error) {
	var approved []models.Review
	err := s.store.Query(ctx, store.Reviews, &approved,
		[]store.Filter{store.Eq("courseId", courseID), store.Eq("approved", true)})
	if err != nil {
		return Rating{}, errors.Wrap(err, "loading approved reviews")
	}

	avg, count := Average(approved)
	err = s.store.Update(ctx, store.Courses, courseID, store.Patch{
		"averageRating": avg,
		"reviewCount":   count,
	})
	if err != nil {
		return Rating{}, errors.Wrapf(err, "updating rating of %s", courseID)
	}
	return Rating{CourseID: courseID, AverageRating: avg, ReviewCount: count}, nil
}
