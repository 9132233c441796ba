package analytics

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/curriculum"
	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

func TestServiceCompute(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	logger := utils.InitLogger(utils.LoggerConfig{Output: io.Discard})
	content := curriculum.NewService(s, logger)
	svc := NewService(s, content, logger, 14)
	svc.now = func() time.Time { return now }

	course, err := content.CreateCourse(ctx, curriculum.CreateCourse{Title: "Course", Price: 500})
	require.NoError(t, err)
	section, err := content.CreateSection(ctx, curriculum.CreateSection{CourseID: course.ID, Title: "S"})
	require.NoError(t, err)
	lesson, err := content.CreateLesson(ctx, curriculum.CreateLesson{SectionID: section.ID, Title: "L", LessonType: models.LessonPDF})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err = s.Create(ctx, store.Enrollments, models.Enrollment{
			CourseID: course.ID, UserID: fmt.Sprintf("u%d", i), Status: models.EnrollmentActive, EnrolledAt: now,
		})
		require.NoError(t, err)
	}
	_, err = s.Create(ctx, store.Progress, models.Progress{
		CourseID: course.ID, UserID: "u0", LessonID: lesson.ID, Completed: true, UpdatedAt: now,
	})
	require.NoError(t, err)

	snapshot, err := svc.Compute(ctx, course.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, snapshot.TotalEnrollments)
	assert.Equal(t, float64(10000), snapshot.RevenueGenerated)
	assert.True(t, snapshot.RevenueIsEstimate)
	assert.Equal(t, 5, snapshot.CompletionRate)
	assert.Equal(t, 14, snapshot.WindowDays)
	require.Len(t, snapshot.LessonDropOffData, 1)
	assert.Equal(t, 1, snapshot.LessonDropOffData[0].Completed)

	_, err = s.Create(ctx, store.Orders, models.Order{CourseID: course.ID, Amount: 480, Status: models.OrderPaid})
	require.NoError(t, err)
	snapshot, err = svc.Compute(ctx, course.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, float64(480), snapshot.RevenueGenerated)
	assert.False(t, snapshot.RevenueIsEstimate)
	assert.Len(t, snapshot.EngagementGraphData, 30)

	_, err = svc.Compute(ctx, "missing", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
