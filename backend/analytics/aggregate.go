// Package analytics computes course snapshots: enrollment and completion totals, revenue,
// per-lesson drop-off and a daily engagement series. Every snapshot is recomputed from the
// records passed in; nothing is cached.
package analytics

import (
	"time"

	"lmsconsole/backend/models"
	"lmsconsole/backend/progress"
)

const DefaultWindowDays = 30

const dayLayout = "2006-01-02"

// Input is everything a snapshot is computed from. Lessons must be in curriculum order.
type Input struct {
	Course      models.Course
	Lessons     []models.Lesson
	Enrollments []models.Enrollment
	Progress    []models.Progress
	Orders      []models.Order
}

// ComputeAnalytics builds the snapshot of in.Course at now. windowDays <= 0 means 30.
func ComputeAnalytics(in Input, now time.Time, windowDays int) models.AnalyticsSnapshot {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	revenue, estimate := Revenue(in.Course, in.Enrollments, in.Orders)

	return models.AnalyticsSnapshot{
		CourseID:            in.Course.ID,
		TotalEnrollments:    len(in.Enrollments),
		ActiveStudents:      activeStudents(in.Enrollments),
		CompletionRate:      CompletionRate(in.Lessons, in.Enrollments, in.Progress),
		RevenueGenerated:    revenue,
		RevenueIsEstimate:   estimate,
		LessonDropOffData:   DropOff(in.Lessons, in.Progress),
		EngagementGraphData: Engagement(in.Enrollments, in.Progress, now, windowDays),
		WindowDays:          windowDays,
		GeneratedAt:         now,
	}
}

func activeStudents(enrollments []models.Enrollment) int {
	n := 0
	for _, e := range enrollments {
		if e.Status == models.EnrollmentActive {
			n++
		}
	}
	return n
}

// CompletionRate is the share of enrollments whose student completed every lesson.
func CompletionRate(lessons []models.Lesson, enrollments []models.Enrollment, records []models.Progress) int {
	if len(enrollments) == 0 || len(lessons) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(enrollments))
	finished := 0
	for _, e := range enrollments {
		if _, dup := seen[e.UserID]; dup {
			continue
		}
		seen[e.UserID] = struct{}{}
		if progress.AggregateStudentProgress(e.CourseID, e.UserID, lessons, records).IsComplete() {
			finished++
		}
	}
	return progress.Percentage(finished, len(enrollments))
}

// Revenue sums the course's paid orders. Only when the course has no order record at all does
// it fall back to enrollments * price, reported as an estimate.
func Revenue(course models.Course, enrollments []models.Enrollment, orders []models.Order) (amount float64, estimate bool) {
	matched := 0
	for _, o := range orders {
		if o.CourseID != course.ID {
			continue
		}
		matched++
		if o.Status == models.OrderPaid {
			amount += o.Amount
		}
	}
	if matched > 0 {
		return amount, false
	}
	return float64(len(enrollments)) * course.Price, true
}

// DropOff reports started and completed students per lesson, in the order of lessons.
func DropOff(lessons []models.Lesson, records []models.Progress) []models.LessonDropOff {
	started := make(map[string]map[string]struct{})
	completed := make(map[string]map[string]struct{})
	add := func(m map[string]map[string]struct{}, lessonID, userID string) {
		if m[lessonID] == nil {
			m[lessonID] = make(map[string]struct{})
		}
		m[lessonID][userID] = struct{}{}
	}
	for _, p := range records {
		add(started, p.LessonID, p.UserID)
		if p.Completed {
			add(completed, p.LessonID, p.UserID)
		}
	}

	out := make([]models.LessonDropOff, 0, len(lessons))
	for _, l := range lessons {
		s, c := len(started[l.ID]), len(completed[l.ID])
		out = append(out, models.LessonDropOff{
			LessonID:    l.ID,
			LessonTitle: l.Title,
			SectionID:   l.SectionID,
			Started:     s,
			Completed:   c,
			DropOffRate: progress.Percentage(s-c, s),
		})
	}
	return out
}

// Engagement returns one point per UTC day for the windowDays days ending today, oldest first.
// ActiveUsers counts enrollments made that day, not actual sessions.
func Engagement(enrollments []models.Enrollment, records []models.Progress, now time.Time, windowDays int) []models.EngagementPoint {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today := now.UTC().Truncate(24 * time.Hour)

	points := make([]models.EngagementPoint, windowDays)
	index := make(map[string]int, windowDays)
	for i := range points {
		day := today.AddDate(0, 0, i-windowDays+1).Format(dayLayout)
		points[i].Date = day
		index[day] = i
	}

	for _, e := range enrollments {
		if i, ok := index[e.EnrolledAt.UTC().Format(dayLayout)]; ok {
			points[i].ActiveUsers++
		}
	}
	for _, p := range records {
		if !p.Completed {
			continue
		}
		if i, ok := index[p.UpdatedAt.UTC().Format(dayLayout)]; ok {
			points[i].LessonsCompleted++
		}
	}
	return points
}
