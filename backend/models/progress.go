package models

import "time"

// Progress is the single record for a (student, lesson) pair.
// Completed is monotonic: once true it is never written back to false.
type Progress struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	CourseID            string     `json:"courseId"`
	LessonID            string     `json:"lessonId"`
	WatchTime           int        `json:"watchTime"`           // seconds
	LastWatchedPosition int        `json:"lastWatchedPosition"` // seconds
	ProgressPercentage  int        `json:"progressPercentage"`
	Completed           bool       `json:"completed"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// StudentProgress is the per-student fold over a course's lessons.
type StudentProgress struct {
	CourseID       string `json:"courseId"`
	UserID         string `json:"userId"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
	Percentage     int    `json:"percentage"`
}

// IsComplete reports whether every lesson of a non-empty course is done.
func (sp StudentProgress) IsComplete() bool {
	return sp.TotalCount > 0 && sp.CompletedCount >= sp.TotalCount
}
