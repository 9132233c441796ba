package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
)

func TestCheckerLessonAccess(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	checker := NewChecker(s)

	sectionID, err := s.Create(ctx, store.Sections, models.Section{CourseID: "c1", UnlockRule: models.UnlockDrip})
	require.NoError(t, err)
	lessonID, err := s.Create(ctx, store.Lessons, models.Lesson{CourseID: "c1", SectionID: sectionID, DripDelayDays: 2})
	require.NoError(t, err)
	previewID, err := s.Create(ctx, store.Lessons, models.Lesson{CourseID: "c1", SectionID: sectionID, IsFreePreview: true})
	require.NoError(t, err)

	decision, err := checker.LessonAccess(ctx, "u1", lessonID, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotEnrolled, decision.Reason)

	decision, err = checker.LessonAccess(ctx, "u1", previewID, now)
	require.NoError(t, err)
	assert.True(t, decision.Unlocked)

	_, err = s.Create(ctx, store.Enrollments, models.Enrollment{
		CourseID: "c1", UserID: "u1", Status: models.EnrollmentActive, EnrolledAt: now.AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	decision, err = checker.LessonAccess(ctx, "u1", lessonID, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonDripPending, decision.Reason)

	var lesson models.Lesson
	require.NoError(t, s.Get(ctx, store.Lessons, lessonID, &lesson))
	err = checker.Require(ctx, "u1", lesson, now)
	assert.ErrorIs(t, err, ErrLessonLocked)

	assert.NoError(t, checker.Require(ctx, "u1", lesson, now.AddDate(0, 0, 1)))

	_, err = checker.LessonAccess(ctx, "u1", "missing", now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckerPrefersActiveEnrollment(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	checker := NewChecker(s)

	_, err := s.Create(ctx, store.Enrollments, models.Enrollment{CourseID: "c1", UserID: "u1", Status: models.EnrollmentActive, EnrolledAt: now})
	require.NoError(t, err)
	_, err = s.Create(ctx, store.Enrollments, models.Enrollment{CourseID: "c1", UserID: "u1", Status: models.EnrollmentCancelled, EnrolledAt: now})
	require.NoError(t, err)

	enrollment, err := checker.Enrollment(ctx, "u1", "c1", now)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, models.EnrollmentActive, enrollment.Status)

	enrollment, err = checker.Enrollment(ctx, "u2", "c1", now)
	require.NoError(t, err)
	assert.Nil(t, enrollment)
}

func TestCheckerLimitedAccessExpires(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	checker := NewChecker(s)

	courseID, err := s.Create(ctx, store.Courses, models.Course{Title: "Limited", AccessType: models.AccessLimited, AccessDurationDays: 30})
	require.NoError(t, err)
	sectionID, err := s.Create(ctx, store.Sections, models.Section{CourseID: courseID, UnlockRule: models.UnlockPaid})
	require.NoError(t, err)
	lessonID, err := s.Create(ctx, store.Lessons, models.Lesson{CourseID: courseID, SectionID: sectionID})
	require.NoError(t, err)
	enrolledAt := now.AddDate(0, 0, -10)
	_, err = s.Create(ctx, store.Enrollments, models.Enrollment{
		CourseID: courseID, UserID: "u1", Status: models.EnrollmentActive, EnrolledAt: enrolledAt,
	})
	require.NoError(t, err)

	enrollment, err := checker.Enrollment(ctx, "u1", courseID, now)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	require.NotNil(t, enrollment.ExpiresAt)
	assert.True(t, enrollment.ExpiresAt.Equal(enrolledAt.AddDate(0, 0, 30)))

	decision, err := checker.LessonAccess(ctx, "u1", lessonID, now)
	require.NoError(t, err)
	assert.True(t, decision.Unlocked)

	decision, err = checker.LessonAccess(ctx, "u1", lessonID, now.AddDate(0, 0, 20))
	require.NoError(t, err)
	assert.False(t, decision.Unlocked)
	assert.Equal(t, ReasonNotEnrolled, decision.Reason)
}
