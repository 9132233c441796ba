package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/models"
)

var now = time.Date(2024, 5, 31, 15, 30, 0, 0, time.UTC)

func threeLessons() []models.Lesson {
	return []models.Lesson{
		{ID: "l1", Title: "One", SectionID: "s1"},
		{ID: "l2", Title: "Two", SectionID: "s1"},
		{ID: "l3", Title: "Three", SectionID: "s2"},
	}
}

func enrollments(n int, at time.Time) []models.Enrollment {
	out := make([]models.Enrollment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Enrollment{
			CourseID: "c", UserID: fmt.Sprintf("u%d", i), Status: models.EnrollmentActive, EnrolledAt: at,
		})
	}
	return out
}

func TestCompletionRate(t *testing.T) {
	lessons := threeLessons()
	enrolled := enrollments(10, now)

	var records []models.Progress
	for i := 0; i < 4; i++ {
		for _, l := range lessons {
			records = append(records, models.Progress{UserID: fmt.Sprintf("u%d", i), LessonID: l.ID, Completed: true})
		}
	}
	// two of three lessons is not complete
	records = append(records,
		models.Progress{UserID: "u5", LessonID: "l1", Completed: true},
		models.Progress{UserID: "u5", LessonID: "l2", Completed: true},
	)

	assert.Equal(t, 40, CompletionRate(lessons, enrolled, records))
	assert.Equal(t, 0, CompletionRate(lessons, nil, records))
	assert.Equal(t, 0, CompletionRate(nil, enrolled, records))
}

func TestDropOff(t *testing.T) {
	var records []models.Progress
	for i := 0; i < 5; i++ {
		records = append(records, models.Progress{UserID: fmt.Sprintf("u%d", i), LessonID: "l2", Completed: i < 2})
	}
	// resubmitted telemetry does not count twice
	records = append(records, models.Progress{UserID: "u0", LessonID: "l2", Completed: true})

	data := DropOff(threeLessons(), records)
	require.Len(t, data, 3)
	assert.Equal(t, []string{"l1", "l2", "l3"}, []string{data[0].LessonID, data[1].LessonID, data[2].LessonID})

	assert.Equal(t, 0, data[0].Started)
	assert.Equal(t, 0, data[0].DropOffRate)
	assert.Equal(t, 5, data[1].Started)
	assert.Equal(t, 2, data[1].Completed)
	assert.Equal(t, 60, data[1].DropOffRate)
}

func TestRevenue(t *testing.T) {
	course := models.Course{ID: "c", Price: 500}

	amount, estimate := Revenue(course, enrollments(20, now), nil)
	assert.Equal(t, float64(10000), amount)
	assert.True(t, estimate)

	orders := []models.Order{
		{CourseID: "c", Amount: 450, Status: models.OrderPaid},
		{CourseID: "c", Amount: 500, Status: models.OrderPaid},
		{CourseID: "c", Amount: 500, Status: models.OrderRefunded},
		{CourseID: "other", Amount: 900, Status: models.OrderPaid},
	}
	amount, estimate = Revenue(course, enrollments(20, now), orders)
	assert.Equal(t, float64(950), amount)
	assert.False(t, estimate)

	// Orders exist but none were paid: the real figure is 0, not the estimate.
	refunded := []models.Order{{CourseID: "c", Amount: 500, Status: models.OrderRefunded}}
	amount, estimate = Revenue(course, enrollments(20, now), refunded)
	assert.Equal(t, float64(0), amount)
	assert.False(t, estimate)

	// Orders of other courses do not count as records of this one.
	amount, estimate = Revenue(course, enrollments(20, now), []models.Order{{CourseID: "other", Amount: 900, Status: models.OrderPaid}})
	assert.Equal(t, float64(10000), amount)
	assert.True(t, estimate)
}

func TestEngagement(t *testing.T) {
	enrolled := []models.Enrollment{
		{UserID: "a", EnrolledAt: now.Add(-2 * time.Hour)},
		{UserID: "b", EnrolledAt: now.AddDate(0, 0, -29)},
		{UserID: "c", EnrolledAt: now.AddDate(0, 0, -30)},
	}
	records := []models.Progress{
		{UserID: "a", LessonID: "l1", Completed: true, UpdatedAt: now},
		{UserID: "a", LessonID: "l2", Completed: false, UpdatedAt: now},
		{UserID: "b", LessonID: "l1", Completed: true, UpdatedAt: now.AddDate(0, 0, -1)},
	}

	points := Engagement(enrolled, records, now, 30)
	require.Len(t, points, 30)
	assert.Equal(t, "2024-05-02", points[0].Date)
	assert.Equal(t, "2024-05-31", points[29].Date)

	assert.Equal(t, 1, points[0].ActiveUsers)
	assert.Equal(t, 1, points[29].ActiveUsers)
	assert.Equal(t, 1, points[29].LessonsCompleted)
	assert.Equal(t, 1, points[28].LessonsCompleted)

	total := 0
	for _, p := range points {
		total += p.ActiveUsers
	}
	assert.Equal(t, 2, total)

	assert.Len(t, Engagement(nil, nil, now, 0), DefaultWindowDays)
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	snapshot := ComputeAnalytics(Input{Course: models.Course{ID: "c", Price: 100}}, now, 7)

	assert.Equal(t, "c", snapshot.CourseID)
	assert.Zero(t, snapshot.TotalEnrollments)
	assert.Zero(t, snapshot.CompletionRate)
	assert.Zero(t, snapshot.RevenueGenerated)
	assert.True(t, snapshot.RevenueIsEstimate)
	assert.Empty(t, snapshot.LessonDropOffData)
	assert.Len(t, snapshot.EngagementGraphData, 7)
	assert.Equal(t, 7, snapshot.WindowDays)
}

func TestComputeAnalyticsActiveStudents(t *testing.T) {
	enrolled := enrollments(3, now)
	enrolled[1].Status = models.EnrollmentExpired

	snapshot := ComputeAnalytics(Input{Course: models.Course{ID: "c"}, Lessons: threeLessons(), Enrollments: enrolled}, now, 0)
	assert.Equal(t, 3, snapshot.TotalEnrollments)
	assert.Equal(t, 2, snapshot.ActiveStudents)
	assert.Equal(t, DefaultWindowDays, snapshot.WindowDays)
	assert.Len(t, snapshot.LessonDropOffData, 3)
}
