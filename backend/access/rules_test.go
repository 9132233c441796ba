package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/models"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func activeEnrollment(enrolledAt time.Time) *models.Enrollment {
	return &models.Enrollment{CourseID: "c", UserID: "u", Status: models.EnrollmentActive, EnrolledAt: enrolledAt}
}

func TestSectionRules(t *testing.T) {
	enrollment := activeEnrollment(now.AddDate(0, 0, -1))
	expired := now.Add(-time.Hour)

	tests := []struct {
		name       string
		rule       string
		enrollment *models.Enrollment
		want       bool
	}{
		{"free without enrollment", models.UnlockFree, nil, true},
		{"paid without enrollment", models.UnlockPaid, nil, false},
		{"paid enrolled", models.UnlockPaid, enrollment, true},
		{"paid pending enrollment", models.UnlockPaid, &models.Enrollment{Status: models.EnrollmentPending}, false},
		{"paid expired enrollment", models.UnlockPaid, &models.Enrollment{Status: models.EnrollmentActive, ExpiresAt: &expired}, false},
		{"drip section behaves like paid", models.UnlockDrip, enrollment, true},
		{"drip section without enrollment", models.UnlockDrip, nil, false},
		{"unknown rule", "members_only", enrollment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := models.Section{UnlockRule: tt.rule}
			assert.Equal(t, tt.want, IsSectionUnlocked(section, tt.enrollment, now))
		})
	}
}

func TestLessonFreePreviewOverridesSection(t *testing.T) {
	section := models.Section{UnlockRule: models.UnlockPaid}
	lesson := models.Lesson{IsFreePreview: true}

	decision := EvaluateLesson(section, lesson, nil, now)
	assert.True(t, decision.Unlocked)
	assert.Equal(t, ReasonFreePreview, decision.Reason)

	lesson.IsFreePreview = false
	assert.False(t, IsLessonUnlocked(section, lesson, nil, now))
}

func TestLessonDrip(t *testing.T) {
	section := models.Section{UnlockRule: models.UnlockDrip}
	lesson := models.Lesson{DripDelayDays: 7}

	t.Run("pending", func(t *testing.T) {
		enrolledAt := now.AddDate(0, 0, -3)
		decision := EvaluateLesson(section, lesson, activeEnrollment(enrolledAt), now)
		assert.False(t, decision.Unlocked)
		assert.Equal(t, ReasonDripPending, decision.Reason)
		require.NotNil(t, decision.UnlocksAt)
		assert.Equal(t, enrolledAt.AddDate(0, 0, 7), *decision.UnlocksAt)
	})

	t.Run("exactly at delay", func(t *testing.T) {
		assert.True(t, IsLessonUnlocked(section, lesson, activeEnrollment(now.AddDate(0, 0, -7)), now))
	})

	t.Run("not enrolled", func(t *testing.T) {
		decision := EvaluateLesson(section, lesson, nil, now)
		assert.False(t, decision.Unlocked)
		assert.Equal(t, ReasonNotEnrolled, decision.Reason)
	})

	t.Run("delay ignored under paid", func(t *testing.T) {
		paid := models.Section{UnlockRule: models.UnlockPaid}
		assert.True(t, IsLessonUnlocked(paid, lesson, activeEnrollment(now), now))
	})
}

func TestWatchPercentageCompletion(t *testing.T) {
	lesson := models.Lesson{CompletionRule: models.CompletionWatchPercentage, WatchPercentageRequired: 80}

	progress := models.Progress{ProgressPercentage: 79}
	progress.Completed = EvaluateCompletion(lesson, progress)
	assert.False(t, progress.Completed)

	progress.ProgressPercentage = 85
	progress.Completed = EvaluateCompletion(lesson, progress)
	assert.True(t, progress.Completed)

	// a partial rewatch never un-completes
	progress.ProgressPercentage = 10
	progress.Completed = EvaluateCompletion(lesson, progress)
	assert.True(t, progress.Completed)
}

func TestWatchPercentageDefaultsToFull(t *testing.T) {
	lesson := models.Lesson{CompletionRule: models.CompletionWatchPercentage}

	assert.False(t, EvaluateCompletion(lesson, models.Progress{ProgressPercentage: 99}))
	assert.True(t, EvaluateCompletion(lesson, models.Progress{ProgressPercentage: 100}))
}

func TestManualAndUnknownCompletion(t *testing.T) {
	manual := models.Lesson{CompletionRule: models.CompletionManual}
	assert.False(t, EvaluateCompletion(manual, models.Progress{ProgressPercentage: 100}))
	assert.True(t, EvaluateCompletion(manual, models.Progress{Completed: true}))

	unknown := models.Lesson{CompletionRule: "quiz_pass"}
	assert.False(t, EvaluateCompletion(unknown, models.Progress{ProgressPercentage: 100}))
}
