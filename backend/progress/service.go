// Package progress records lesson telemetry and completion for students and folds the
// records into per-student and per-course progress.
package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"lmsconsole/backend/access"
	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

var ErrAttemptsExhausted = errors.New("no quiz attempts left")

// LessonSource lists the lessons of a course in curriculum order.
type LessonSource interface {
	CourseLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
}

type Service struct {
	store   store.Store
	lessons LessonSource
	checker *access.Checker
	logger  *utils.Logger
	now     func() time.Time
}

func NewService(s store.Store, lessons LessonSource, checker *access.Checker, logger *utils.Logger) *Service {
	return &Service{
		store:   s,
		lessons: lessons,
		checker: checker,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Telemetry is one watch report from the player.
type Telemetry struct {
	UserID              string `json:"userId" validate:"required"`
	LessonID            string `json:"lessonId" validate:"required"`
	WatchTime           int    `json:"watchTime" validate:"gte=0"`
	LastWatchedPosition int    `json:"lastWatchedPosition" validate:"gte=0"`
	// ProgressPercentage is clamped to [0, 100].
	ProgressPercentage int `json:"progressPercentage"`
}

type QuizSubmission struct {
	UserID string `json:"userId" validate:"required"`
	QuizID string `json:"quizId" validate:"required"`
	Score  int    `json:"score" validate:"gte=0"`
}

func clamp(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func (s *Service) lesson(ctx context.Context, id string) (models.Lesson, error) {
	var lesson models.Lesson
	if err := s.store.Get(ctx, store.Lessons, id, &lesson); err != nil {
		return models.Lesson{}, errors.Wrapf(err, "lesson %s", id)
	}
	return lesson, nil
}

// record returns the student's progress record for the lesson, or nil if there is none yet.
func (s *Service) record(ctx context.Context, userID, lessonID string) (*models.Progress, error) {
	var records []models.Progress
	err := s.store.Query(ctx, store.Progress, &records,
		[]store.Filter{store.Eq("userId", userID), store.Eq("lessonId", lessonID)})
	if err != nil {
		return nil, errors.Wrap(err, "loading progress")
	}
	if len(records) == 0 {
		return nil, nil
	}
	// a completed duplicate wins so completion is never lost
	for i := range records {
		if records[i].Completed {
			return &records[i], nil
		}
	}
	return &records[0], nil
}

// save writes next as the single record of its (user, lesson) pair.
func (s *Service) save(ctx context.Context, existing *models.Progress, next models.Progress) (models.Progress, error) {
	if existing == nil {
		id, err := s.store.Create(ctx, store.Progress, next)
		if err != nil {
			return models.Progress{}, errors.Wrap(err, "creating progress")
		}
		next.ID = id
		return next, nil
	}

	next.ID = existing.ID
	err := s.store.Update(ctx, store.Progress, existing.ID, store.Patch{
		"watchTime":           next.WatchTime,
		"lastWatchedPosition": next.LastWatchedPosition,
		"progressPercentage":  next.ProgressPercentage,
		"completed":           next.Completed,
		"completedAt":         next.CompletedAt,
		"updatedAt":           next.UpdatedAt,
	})
	return next, errors.Wrapf(err, "updating progress %s", existing.ID)
}

func (s *Service) markCompleted(p *models.Progress, now time.Time) {
	p.Completed = true
	if p.CompletedAt == nil {
		p.CompletedAt = &now
	}
}

// RecordTelemetry stores the latest watch report and evaluates the lesson's completion rule.
// A completed record stays completed.
func (s *Service) RecordTelemetry(ctx context.Context, t Telemetry) (models.Progress, error) {
	if err := utils.Validate.Struct(t); err != nil {
		return models.Progress{}, err
	}
	lesson, err := s.lesson(ctx, t.LessonID)
	if err != nil {
		return models.Progress{}, err
	}
	now := s.now()
	if err = s.checker.Require(ctx, t.UserID, lesson, now); err != nil {
		return models.Progress{}, err
	}

	existing, err := s.record(ctx, t.UserID, t.LessonID)
	if err != nil {
		return models.Progress{}, err
	}

	next := models.Progress{UserID: t.UserID, CourseID: lesson.CourseID, LessonID: lesson.ID}
	if existing != nil {
		next.Completed = existing.Completed
		next.CompletedAt = existing.CompletedAt
	}
	next.WatchTime = t.WatchTime
	next.LastWatchedPosition = t.LastWatchedPosition
	next.ProgressPercentage = clamp(t.ProgressPercentage)
	next.UpdatedAt = now
	if access.EvaluateCompletion(lesson, next) {
		s.markCompleted(&next, now)
	}

	return s.save(ctx, existing, next)
}

// MarkComplete is the student's explicit "mark complete" on a manual lesson without quizzes.
// Repeating it is a no-op.
func (s *Service) MarkComplete(ctx context.Context, userID, lessonID string) (models.Progress, error) {
	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return models.Progress{}, err
	}
	if lesson.CompletionRule != models.CompletionManual {
		return models.Progress{}, utils.NewValidationError(nil, utils.FieldError{
			Field: "completionRule",
			Error: "only manual lessons can be marked complete",
		})
	}
	quizzes, err := s.store.Count(ctx, store.Quizzes, []store.Filter{store.Eq("lessonId", lesson.ID)})
	if err != nil {
		return models.Progress{}, errors.Wrap(err, "counting quizzes")
	}
	if quizzes > 0 {
		return models.Progress{}, utils.NewValidationError(nil, utils.FieldError{
			Field: "lessonId",
			Error: "lessons with a quiz are completed by passing it",
		})
	}
	return s.complete(ctx, userID, lesson)
}

func (s *Service) complete(ctx context.Context, userID string, lesson models.Lesson) (models.Progress, error) {
	now := s.now()
	if err := s.checker.Require(ctx, userID, lesson, now); err != nil {
		return models.Progress{}, err
	}
	existing, err := s.record(ctx, userID, lesson.ID)
	if err != nil {
		return models.Progress{}, err
	}
	if existing != nil && existing.Completed {
		return *existing, nil
	}

	next := models.Progress{UserID: userID, CourseID: lesson.CourseID, LessonID: lesson.ID}
	if existing != nil {
		next = *existing
	}
	next.UpdatedAt = now
	s.markCompleted(&next, now)
	return s.save(ctx, existing, next)
}

// RecordQuizAttempt stores an attempt within the quiz's allowance. A passing score completes
// the quiz's lesson.
func (s *Service) RecordQuizAttempt(ctx context.Context, sub QuizSubmission) (models.QuizAttempt, error) {
	if err := utils.Validate.Struct(sub); err != nil {
		return models.QuizAttempt{}, err
	}
	var quiz models.Quiz
	if err := s.store.Get(ctx, store.Quizzes, sub.QuizID, &quiz); err != nil {
		return models.QuizAttempt{}, errors.Wrapf(err, "quiz %s", sub.QuizID)
	}
	if sub.Score > quiz.TotalMarks {
		return models.QuizAttempt{}, utils.NewValidationError(nil, utils.FieldError{
			Field: "score",
			Error: "score cannot exceed totalMarks",
		})
	}
	lesson, err := s.lesson(ctx, quiz.LessonID)
	if err != nil {
		return models.QuizAttempt{}, err
	}
	now := s.now()
	if err = s.checker.Require(ctx, sub.UserID, lesson, now); err != nil {
		return models.QuizAttempt{}, err
	}

	used, err := s.store.Count(ctx, store.QuizAttempts,
		[]store.Filter{store.Eq("quizId", quiz.ID), store.Eq("userId", sub.UserID)})
	if err != nil {
		return models.QuizAttempt{}, errors.Wrap(err, "counting attempts")
	}
	if quiz.AttemptsAllowed > 0 && used >= quiz.AttemptsAllowed {
		return models.QuizAttempt{}, errors.Wrapf(ErrAttemptsExhausted, "%d of %d used", used, quiz.AttemptsAllowed)
	}

	attempt := models.QuizAttempt{
		QuizID:    quiz.ID,
		LessonID:  lesson.ID,
		CourseID:  lesson.CourseID,
		UserID:    sub.UserID,
		Score:     sub.Score,
		Passed:    sub.Score >= quiz.PassingMarks,
		Attempt:   used + 1,
		CreatedAt: now,
	}
	id, err := s.store.Create(ctx, store.QuizAttempts, attempt)
	if err != nil {
		return models.QuizAttempt{}, errors.Wrap(err, "creating attempt")
	}
	attempt.ID = id

	if attempt.Passed {
		if _, err = s.complete(ctx, sub.UserID, lesson); err != nil {
			return attempt, err
		}
	}
	return attempt, nil
}

// LessonProgress returns the student's progress records in the course.
func (s *Service) LessonProgress(ctx context.Context, courseID, userID string) ([]models.Progress, error) {
	records := []models.Progress{}
	err := s.store.Query(ctx, store.Progress, &records,
		[]store.Filter{store.Eq("courseId", courseID), store.Eq("userId", userID)})
	if err != nil {
		return nil, errors.Wrap(err, "loading progress")
	}
	return records, nil
}

func (s *Service) StudentProgress(ctx context.Context, courseID, userID string) (models.StudentProgress, error) {
	lessons, err := s.lessons.CourseLessons(ctx, courseID)
	if err != nil {
		return models.StudentProgress{}, err
	}
	records, err := s.LessonProgress(ctx, courseID, userID)
	if err != nil {
		return models.StudentProgress{}, err
	}
	return AggregateStudentProgress(courseID, userID, lessons, records), nil
}

// Roster summarizes every student with progress in the course, best first.
func (s *Service) Roster(ctx context.Context, courseID string) ([]models.StudentProgress, error) {
	lessons, err := s.lessons.CourseLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var records []models.Progress
	err = s.store.Query(ctx, store.Progress, &records, []store.Filter{store.Eq("courseId", courseID)})
	if err != nil {
		return nil, errors.Wrap(err, "loading progress")
	}
	return AggregateCourseRoster(courseID, lessons, records), nil
}

type Certificate struct {
	Eligible bool                   `json:"eligible"`
	Title    string                 `json:"title,omitempty"`
	Required int                    `json:"required"`
	Progress models.StudentProgress `json:"progress"`
}

// CertificateEligibility checks the student against the course's certificate config.
func (s *Service) CertificateEligibility(ctx context.Context, courseID, userID string) (Certificate, error) {
	var course models.Course
	if err := s.store.Get(ctx, store.Courses, courseID, &course); err != nil {
		return Certificate{}, errors.Wrapf(err, "course %s", courseID)
	}
	sp, err := s.StudentProgress(ctx, courseID, userID)
	if err != nil {
		return Certificate{}, err
	}

	required := course.Certificate.RequiredProgress()
	return Certificate{
		Eligible: course.Certificate.Enabled && sp.TotalCount > 0 && sp.Percentage >= required,
		Title:    course.Certificate.Title,
		Required: required,
		Progress: sp,
	}, nil
}
