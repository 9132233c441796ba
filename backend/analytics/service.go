package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"lmsconsole/backend/models"
	"lmsconsole/backend/progress"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

type Service struct {
	store      store.Store
	lessons    progress.LessonSource
	logger     *utils.Logger
	windowDays int
	now        func() time.Time
}

// NewService uses windowDays as the default window of Compute.
func NewService(s store.Store, lessons progress.LessonSource, logger *utils.Logger, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{
		store:      s,
		lessons:    lessons,
		logger:     logger,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Compute fetches the course's records and computes a fresh snapshot.
// windowDays <= 0 uses the service default.
func (s *Service) Compute(ctx context.Context, courseID string, windowDays int) (models.AnalyticsSnapshot, error) {
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	var in Input
	if err := s.store.Get(ctx, store.Courses, courseID, &in.Course); err != nil {
		return models.AnalyticsSnapshot{}, errors.Wrapf(err, "course %s", courseID)
	}

	byCourse := []store.Filter{store.Eq("courseId", courseID)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lessons, err := s.lessons.CourseLessons(gctx, courseID)
		in.Lessons = lessons
		return err
	})
	g.Go(func() error {
		return errors.Wrap(s.store.Query(gctx, store.Enrollments, &in.Enrollments, byCourse), "loading enrollments")
	})
	g.Go(func() error {
		return errors.Wrap(s.store.Query(gctx, store.Progress, &in.Progress, byCourse), "loading progress")
	})
	g.Go(func() error {
		return errors.Wrap(s.store.Query(gctx, store.Orders, &in.Orders, byCourse), "loading orders")
	})
	if err := g.Wait(); err != nil {
		return models.AnalyticsSnapshot{}, err
	}

	snapshot := ComputeAnalytics(in, s.now(), windowDays)
	if snapshot.RevenueIsEstimate {
		s.logger.Debugf("course %s has no orders, revenue is estimated", courseID)
	}
	return snapshot, nil
}
