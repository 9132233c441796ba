package progress

import (
	"math"
	"sort"

	"lmsconsole/backend/models"
)

// Percentage returns round(100 * part / total), 0 when total is 0, clamped to [0, 100].
func Percentage(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func lessonSet(lessons []models.Lesson) map[string]struct{} {
	set := make(map[string]struct{}, len(lessons))
	for _, l := range lessons {
		set[l.ID] = struct{}{}
	}
	return set
}

// completedLessons counts distinct completed lessons of the course among records,
// so a resubmitted or duplicated record is counted once.
func completedLessons(courseLessons map[string]struct{}, records []models.Progress) int {
	done := make(map[string]struct{})
	for _, p := range records {
		if !p.Completed {
			continue
		}
		if _, ok := courseLessons[p.LessonID]; ok {
			done[p.LessonID] = struct{}{}
		}
	}
	return len(done)
}

// AggregateStudentProgress folds one student's progress records over every lesson of the course.
// Locked lessons still count toward the total.
func AggregateStudentProgress(courseID, userID string, lessons []models.Lesson, records []models.Progress) models.StudentProgress {
	own := make([]models.Progress, 0, len(records))
	for _, p := range records {
		if p.UserID == userID {
			own = append(own, p)
		}
	}

	completed := completedLessons(lessonSet(lessons), own)
	return models.StudentProgress{
		CourseID:       courseID,
		UserID:         userID,
		CompletedCount: completed,
		TotalCount:     len(lessons),
		Percentage:     Percentage(completed, len(lessons)),
	}
}

// AggregateCourseRoster groups records by student and sorts the summaries by percentage,
// highest first. Ties keep the order in which students first appear in records.
func AggregateCourseRoster(courseID string, lessons []models.Lesson, records []models.Progress) []models.StudentProgress {
	set := lessonSet(lessons)

	var users []string
	groups := make(map[string][]models.Progress)
	for _, p := range records {
		if _, seen := groups[p.UserID]; !seen {
			users = append(users, p.UserID)
		}
		groups[p.UserID] = append(groups[p.UserID], p)
	}

	roster := make([]models.StudentProgress, 0, len(users))
	for _, userID := range users {
		completed := completedLessons(set, groups[userID])
		roster = append(roster, models.StudentProgress{
			CourseID:       courseID,
			UserID:         userID,
			CompletedCount: completed,
			TotalCount:     len(lessons),
			Percentage:     Percentage(completed, len(lessons)),
		})
	}

	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Percentage > roster[j].Percentage
	})
	return roster
}
