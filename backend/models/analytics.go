package models

import "time"

type LessonDropOff struct {
	LessonID    string `json:"lessonId"`
	LessonTitle string `json:"lessonTitle"`
	SectionID   string `json:"sectionId"`
	Started     int    `json:"started"`
	Completed   int    `json:"completed"`
	DropOffRate int    `json:"dropOffRate"`
}

// EngagementPoint is one UTC day of the engagement series.
// ActiveUsers counts enrollments made that day, a coarse proxy for activity.
type EngagementPoint struct {
	Date             string `json:"date"` // 2006-01-02
	ActiveUsers      int    `json:"activeUsers"`
	LessonsCompleted int    `json:"lessonsCompleted"`
}

type AnalyticsSnapshot struct {
	CourseID         string  `json:"courseId"`
	TotalEnrollments int     `json:"totalEnrollments"`
	ActiveStudents   int     `json:"activeStudents"`
	CompletionRate   int     `json:"completionRate"`
	RevenueGenerated float64 `json:"revenueGenerated"`
	// RevenueIsEstimate is true when revenue is enrollments * price rather than paid orders.
	RevenueIsEstimate   bool              `json:"revenueIsEstimate"`
	LessonDropOffData   []LessonDropOff   `json:"lessonDropOffData"`
	EngagementGraphData []EngagementPoint `json:"engagementGraphData"`
	WindowDays          int               `json:"windowDays"`
	GeneratedAt         time.Time         `json:"generatedAt"`
}
