package models

import "time"

type Quiz struct {
	ID               string    `json:"id"`
	LessonID         string    `json:"lessonId"`
	CourseID         string    `json:"courseId"`
	Title            string    `json:"title"`
	TotalMarks       int       `json:"totalMarks"`
	PassingMarks     int       `json:"passingMarks"`
	AttemptsAllowed  int       `json:"attemptsAllowed"` // 0 means unlimited
	TimeLimitMinutes int       `json:"timeLimitMinutes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type QuizAttempt struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	LessonID  string    `json:"lessonId"`
	CourseID  string    `json:"courseId"`
	UserID    string    `json:"userId"`
	Score     int       `json:"score"`
	Passed    bool      `json:"passed"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"createdAt"`
}
