package models

import "time"

// Review states
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type Review struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"courseId"`
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName,omitempty"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment"`
	Approved    bool       `json:"approved"`
	ModeratedAt *time.Time `json:"moderatedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// State derives the moderation state; pending reviews have never been moderated.
func (r Review) State() string {
	switch {
	case r.Approved:
		return ReviewApproved
	case r.ModeratedAt == nil:
		return ReviewPending
	default:
		return ReviewRejected
	}
}
