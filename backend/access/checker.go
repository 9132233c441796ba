package access

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
)

var ErrLessonLocked = errors.New("lesson is locked")

// LockedError carries the decision that locked the lesson.
type LockedError struct {
	LessonID string
	Decision Decision
}

func (e *LockedError) Error() string {
	if e.Decision.UnlocksAt != nil {
		return fmt.Sprintf("lesson %s is locked until %s", e.LessonID, e.Decision.UnlocksAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("lesson %s is locked: %s", e.LessonID, e.Decision.Reason)
}

func (e *LockedError) Is(target error) bool { return target == ErrLessonLocked }

type Checker struct {
	store store.Store
}

func NewChecker(s store.Store) *Checker {
	return &Checker{store: s}
}

// Enrollment returns the student's enrollment in the course, preferring an active one,
// or nil when there is none. Limited courses fill in ExpiresAt from their access duration.
func (c *Checker) Enrollment(ctx context.Context, userID, courseID string, now time.Time) (*models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := c.store.Query(ctx, store.Enrollments, &enrollments,
		[]store.Filter{store.Eq("courseId", courseID), store.Eq("userId", userID)})
	if err != nil {
		return nil, errors.Wrap(err, "loading enrollment")
	}
	if len(enrollments) == 0 {
		return nil, nil
	}

	var course models.Course
	err = c.store.Get(ctx, store.Courses, courseID, &course)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "loading course")
	}
	for i := range enrollments {
		enrollments[i].ExpiresAt = course.AccessExpiry(enrollments[i])
	}

	for i := range enrollments {
		if enrollments[i].IsActive(now) {
			return &enrollments[i], nil
		}
	}
	return &enrollments[len(enrollments)-1], nil
}

// LessonAccess loads the lesson, its section and the student's enrollment and evaluates access.
func (c *Checker) LessonAccess(ctx context.Context, userID, lessonID string, now time.Time) (Decision, error) {
	var lesson models.Lesson
	if err := c.store.Get(ctx, store.Lessons, lessonID, &lesson); err != nil {
		return Decision{}, errors.Wrapf(err, "lesson %s", lessonID)
	}
	return c.Decide(ctx, userID, lesson, now)
}

func (c *Checker) Decide(ctx context.Context, userID string, lesson models.Lesson, now time.Time) (Decision, error) {
	if lesson.IsFreePreview {
		return Decision{Unlocked: true, Reason: ReasonFreePreview}, nil
	}

	var section models.Section
	if err := c.store.Get(ctx, store.Sections, lesson.SectionID, &section); err != nil {
		return Decision{}, errors.Wrapf(err, "section %s", lesson.SectionID)
	}
	enrollment, err := c.Enrollment(ctx, userID, lesson.CourseID, now)
	if err != nil {
		return Decision{}, err
	}
	return EvaluateLesson(section, lesson, enrollment, now), nil
}

// Require returns a *LockedError (matching ErrLessonLocked) unless the lesson is unlocked.
func (c *Checker) Require(ctx context.Context, userID string, lesson models.Lesson, now time.Time) error {
	decision, err := c.Decide(ctx, userID, lesson, now)
	if err != nil {
		return err
	}
	if !decision.Unlocked {
		return &LockedError{LessonID: lesson.ID, Decision: decision}
	}
	return nil
}
