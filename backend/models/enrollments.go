package models

import "time"

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentPending   = "pending"
	EnrollmentExpired   = "expired"
	EnrollmentCancelled = "cancelled"
)

// Enrollment is written by the checkout flow and read-only to the console.
type Enrollment struct {
	ID         string     `json:"id"`
	CourseID   string     `json:"courseId"`
	UserID     string     `json:"userId"`
	Status     string     `json:"status"`
	EnrolledAt time.Time  `json:"enrolledAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// IsActive reports whether the enrollment grants access at now.
func (e Enrollment) IsActive(now time.Time) bool {
	if e.Status != EnrollmentActive {
		return false
	}
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// Order statuses
const (
	OrderPaid     = "paid"
	OrderPending  = "pending"
	OrderFailed   = "failed"
	OrderRefunded = "refunded"
)

// Order is a payment record owned by the payment gateway integration.
type Order struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
