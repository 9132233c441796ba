package curriculum

import (
	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

// Commands are the only way the console edits the hierarchy. Each one is validated before
// the first write.

type CreateCourse struct {
	OwnerID            string                   `json:"ownerId"`
	Title              string                   `json:"title" validate:"notblank,max=200"`
	ShortDesc          string                   `json:"shortDesc" validate:"max=500"`
	Description        string                   `json:"description"`
	Price              float64                  `json:"price" validate:"gte=0"`
	Currency           string                   `json:"currency" validate:"omitempty,len=3"`
	AccessType         string                   `json:"accessType" validate:"omitempty,oneof=lifetime limited subscription"`
	AccessDurationDays int                      `json:"accessDurationDays" validate:"gte=0"`
	EnrollmentType     string                   `json:"enrollmentType" validate:"omitempty,oneof=auto manual"`
	Certificate        models.CertificateConfig `json:"certificate"`
	IsPublished        bool                     `json:"isPublished"`
}

// UpdateCourse carries only the fields to change. Rating fields are owned by review moderation.
type UpdateCourse struct {
	Title              *string                   `json:"title" validate:"omitempty,notblank,max=200"`
	ShortDesc          *string                   `json:"shortDesc" validate:"omitempty,max=500"`
	Description        *string                   `json:"description"`
	Price              *float64                  `json:"price" validate:"omitempty,gte=0"`
	Currency           *string                   `json:"currency" validate:"omitempty,len=3"`
	AccessType         *string                   `json:"accessType" validate:"omitempty,oneof=lifetime limited subscription"`
	AccessDurationDays *int                      `json:"accessDurationDays" validate:"omitempty,gte=0"`
	EnrollmentType     *string                   `json:"enrollmentType" validate:"omitempty,oneof=auto manual"`
	Certificate        *models.CertificateConfig `json:"certificate"`
	IsPublished        *bool                     `json:"isPublished"`
}

func (cmd UpdateCourse) patch() store.Patch {
	p := store.Patch{}
	if cmd.Title != nil {
		p["title"] = utils.CleanString(*cmd.Title)
	}
	if cmd.ShortDesc != nil {
		p["shortDesc"] = *cmd.ShortDesc
	}
	if cmd.Description != nil {
		p["description"] = *cmd.Description
	}
	if cmd.Price != nil {
		p["price"] = *cmd.Price
	}
	if cmd.Currency != nil {
		p["currency"] = utils.CleanString(*cmd.Currency)
	}
	if cmd.AccessType != nil {
		p["accessType"] = *cmd.AccessType
	}
	if cmd.AccessDurationDays != nil {
		p["accessDurationDays"] = *cmd.AccessDurationDays
	}
	if cmd.EnrollmentType != nil {
		p["enrollmentType"] = *cmd.EnrollmentType
	}
	if cmd.Certificate != nil {
		p["certificate"] = *cmd.Certificate
	}
	if cmd.IsPublished != nil {
		p["isPublished"] = *cmd.IsPublished
	}
	return p
}

type CreateSection struct {
	CourseID    string `json:"courseId" validate:"required"`
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description"`
	UnlockRule  string `json:"unlockRule" validate:"omitempty,oneof=free paid drip"`
	// OrderIndex defaults to the end of the list.
	OrderIndex *int `json:"orderIndex" validate:"omitempty,gte=0"`
}

type UpdateSection struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	UnlockRule  *string `json:"unlockRule" validate:"omitempty,oneof=free paid drip"`
}

func (cmd UpdateSection) patch() store.Patch {
	p := store.Patch{}
	if cmd.Title != nil {
		p["title"] = utils.CleanString(*cmd.Title)
	}
	if cmd.Description != nil {
		p["description"] = *cmd.Description
	}
	if cmd.UnlockRule != nil {
		p["unlockRule"] = *cmd.UnlockRule
	}
	return p
}

type CreateLesson struct {
	SectionID string `json:"sectionId" validate:"required"`
	// CourseID is optional; when given it must match the section's course.
	CourseID                string `json:"courseId"`
	Title                   string `json:"title" validate:"notblank,max=200"`
	Description             string `json:"description"`
	LessonType              string `json:"lessonType" validate:"required,oneof=video pdf quiz"`
	CompletionRule          string `json:"completionRule" validate:"omitempty,oneof=watch_percentage manual"`
	WatchPercentageRequired int    `json:"watchPercentageRequired" validate:"gte=0,lte=100"`
	DripDelayDays           int    `json:"dripDelayDays" validate:"gte=0"`
	IsFreePreview           bool   `json:"isFreePreview"`
	VideoURL                string `json:"videoUrl" validate:"omitempty,url"`
	DurationSeconds         int    `json:"durationSeconds" validate:"gte=0"`
	ResourceURL             string `json:"resourceUrl" validate:"omitempty,url"`
	OrderIndex              *int   `json:"orderIndex" validate:"omitempty,gte=0"`
}

// completionRule defaults video lessons to watch_percentage and everything else to manual.
func (cmd CreateLesson) completionRule() string {
	if cmd.CompletionRule != "" {
		return cmd.CompletionRule
	}
	if cmd.LessonType == models.LessonVideo {
		return models.CompletionWatchPercentage
	}
	return models.CompletionManual
}

// UpdateLesson never moves a lesson to another section; order changes go through Reorder.
type UpdateLesson struct {
	Title                   *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description             *string `json:"description"`
	LessonType              *string `json:"lessonType" validate:"omitempty,oneof=video pdf quiz"`
	CompletionRule          *string `json:"completionRule" validate:"omitempty,oneof=watch_percentage manual"`
	WatchPercentageRequired *int    `json:"watchPercentageRequired" validate:"omitempty,gte=0,lte=100"`
	DripDelayDays           *int    `json:"dripDelayDays" validate:"omitempty,gte=0"`
	IsFreePreview           *bool   `json:"isFreePreview"`
	VideoURL                *string `json:"videoUrl" validate:"omitempty,url"`
	DurationSeconds         *int    `json:"durationSeconds" validate:"omitempty,gte=0"`
	ResourceURL             *string `json:"resourceUrl" validate:"omitempty,url"`
}

func (cmd UpdateLesson) patch() store.Patch {
	p := store.Patch{}
	if cmd.Title != nil {
		p["title"] = utils.CleanString(*cmd.Title)
	}
	if cmd.Description != nil {
		p["description"] = *cmd.Description
	}
	if cmd.LessonType != nil {
		p["lessonType"] = *cmd.LessonType
	}
	if cmd.CompletionRule != nil {
		p["completionRule"] = *cmd.CompletionRule
	}
	if cmd.WatchPercentageRequired != nil {
		p["watchPercentageRequired"] = *cmd.WatchPercentageRequired
	}
	if cmd.DripDelayDays != nil {
		p["dripDelayDays"] = *cmd.DripDelayDays
	}
	if cmd.IsFreePreview != nil {
		p["isFreePreview"] = *cmd.IsFreePreview
	}
	if cmd.VideoURL != nil {
		p["videoUrl"] = *cmd.VideoURL
	}
	if cmd.DurationSeconds != nil {
		p["durationSeconds"] = *cmd.DurationSeconds
	}
	if cmd.ResourceURL != nil {
		p["resourceUrl"] = *cmd.ResourceURL
	}
	return p
}

type CreateQuiz struct {
	LessonID         string `json:"lessonId" validate:"required"`
	Title            string `json:"title" validate:"notblank,max=200"`
	TotalMarks       int    `json:"totalMarks" validate:"gt=0"`
	PassingMarks     int    `json:"passingMarks" validate:"gte=0,ltefield=TotalMarks"`
	AttemptsAllowed  int    `json:"attemptsAllowed" validate:"gte=0"`
	TimeLimitMinutes int    `json:"timeLimitMinutes" validate:"gte=0"`
}

// UpdateQuiz is checked against the stored quiz, so passingMarks <= totalMarks holds after the merge.
type UpdateQuiz struct {
	Title            *string `json:"title" validate:"omitempty,notblank,max=200"`
	TotalMarks       *int    `json:"totalMarks" validate:"omitempty,gt=0"`
	PassingMarks     *int    `json:"passingMarks" validate:"omitempty,gte=0"`
	AttemptsAllowed  *int    `json:"attemptsAllowed" validate:"omitempty,gte=0"`
	TimeLimitMinutes *int    `json:"timeLimitMinutes" validate:"omitempty,gte=0"`
}

// merged applies the update to quiz and returns it as a CreateQuiz for validation.
func (cmd UpdateQuiz) merged(quiz models.Quiz) CreateQuiz {
	out := CreateQuiz{
		LessonID:         quiz.LessonID,
		Title:            quiz.Title,
		TotalMarks:       quiz.TotalMarks,
		PassingMarks:     quiz.PassingMarks,
		AttemptsAllowed:  quiz.AttemptsAllowed,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
	}
	if cmd.Title != nil {
		out.Title = utils.CleanString(*cmd.Title)
	}
	if cmd.TotalMarks != nil {
		out.TotalMarks = *cmd.TotalMarks
	}
	if cmd.PassingMarks != nil {
		out.PassingMarks = *cmd.PassingMarks
	}
	if cmd.AttemptsAllowed != nil {
		out.AttemptsAllowed = *cmd.AttemptsAllowed
	}
	if cmd.TimeLimitMinutes != nil {
		out.TimeLimitMinutes = *cmd.TimeLimitMinutes
	}
	return out
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Reorder moves ChildID one position within the children of ParentID.
type Reorder struct {
	ParentID  string    `json:"parentId" validate:"required"`
	ChildID   string    `json:"childId" validate:"required"`
	Direction Direction `json:"direction" validate:"required,oneof=up down"`
}
