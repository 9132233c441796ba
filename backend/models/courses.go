package models

import "time"

// Access types
const (
	AccessLifetime     = "lifetime"
	AccessLimited      = "limited"
	AccessSubscription = "subscription"
)

// Enrollment types
const (
	EnrollmentAuto   = "auto"
	EnrollmentManual = "manual"
)

// Unlock rules
const (
	UnlockFree = "free"
	UnlockPaid = "paid"
	UnlockDrip = "drip"
)

// Lesson types
const (
	LessonVideo = "video"
	LessonPDF   = "pdf"
	LessonQuiz  = "quiz"
)

// Completion rules
const (
	CompletionWatchPercentage = "watch_percentage"
	CompletionManual          = "manual"
)

// DefaultWatchPercentage applies when a watch_percentage lesson has no requirement set.
const DefaultWatchPercentage = 100

type CertificateConfig struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title,omitempty"`
	// MinProgress is the course percentage needed for a certificate; 0 means 100.
	MinProgress int `json:"minProgress,omitempty"`
}

// RequiredProgress returns the effective percentage needed for a certificate.
func (cc CertificateConfig) RequiredProgress() int {
	if cc.MinProgress <= 0 || cc.MinProgress > 100 {
		return 100
	}
	return cc.MinProgress
}

type Course struct {
	ID                 string            `json:"id"`
	OwnerID            string            `json:"ownerId"`
	Title              string            `json:"title"`
	ShortDesc          string            `json:"shortDesc,omitempty"`
	Description        string            `json:"description,omitempty"`
	Price              float64           `json:"price"`
	Currency           string            `json:"currency,omitempty"`
	AccessType         string            `json:"accessType"`
	AccessDurationDays int               `json:"accessDurationDays,omitempty"` // limited access only, see AccessExpiry
	EnrollmentType     string            `json:"enrollmentType"`
	Certificate        CertificateConfig `json:"certificate"`
	IsPublished        bool              `json:"isPublished"`

	// derived from approved reviews, never edited directly
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccessExpiry returns when an enrollment in the course stops granting access. An explicit
// ExpiresAt wins; limited courses otherwise end AccessDurationDays after enrollment.
func (c Course) AccessExpiry(e Enrollment) *time.Time {
	if e.ExpiresAt != nil {
		return e.ExpiresAt
	}
	if c.AccessType != AccessLimited || c.AccessDurationDays <= 0 {
		return nil
	}
	expiry := e.EnrolledAt.AddDate(0, 0, c.AccessDurationDays)
	return &expiry
}

type Section struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OrderIndex  int       `json:"orderIndex"`
	UnlockRule  string    `json:"unlockRule"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Lesson.CourseID is a denormalized copy of the parent section's CourseID.
type Lesson struct {
	ID                      string    `json:"id"`
	CourseID                string    `json:"courseId"`
	SectionID               string    `json:"sectionId"`
	Title                   string    `json:"title"`
	Description             string    `json:"description,omitempty"`
	OrderIndex              int       `json:"orderIndex"`
	LessonType              string    `json:"lessonType"`
	CompletionRule          string    `json:"completionRule"`
	WatchPercentageRequired int       `json:"watchPercentageRequired"`
	DripDelayDays           int       `json:"dripDelayDays,omitempty"`
	IsFreePreview           bool      `json:"isFreePreview"`
	VideoURL                string    `json:"videoUrl,omitempty"`
	DurationSeconds         int       `json:"durationSeconds,omitempty"`
	ResourceURL             string    `json:"resourceUrl,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// RequiredWatchPercentage returns the threshold used by the watch_percentage rule.
func (l Lesson) RequiredWatchPercentage() int {
	if l.WatchPercentageRequired <= 0 || l.WatchPercentageRequired > 100 {
		return DefaultWatchPercentage
	}
	return l.WatchPercentageRequired
}

// CurriculumSection is a section with its lessons in curriculum order.
type CurriculumSection struct {
	Section
	Lessons []CurriculumLesson `json:"lessons"`
}

type CurriculumLesson struct {
	Lesson
	Quizzes []Quiz `json:"quizzes"`
}

// Curriculum is the full Course -> Section -> Lesson -> Quiz tree.
type Curriculum struct {
	Course   Course              `json:"course"`
	Sections []CurriculumSection `json:"sections"`
}

// Lessons flattens the tree in curriculum order.
func (c Curriculum) Lessons() []Lesson {
	var lessons []Lesson
	for _, s := range c.Sections {
		for _, l := range s.Lessons {
			lessons = append(lessons, l.Lesson)
		}
	}
	return lessons
}
