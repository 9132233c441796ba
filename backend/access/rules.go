// Package access decides whether a student may open a section or lesson and whether a lesson
// counts as complete. The evaluators are pure; Checker loads what they need from the store.
package access

import (
	"time"

	"lmsconsole/backend/models"
)

// Decision reasons
const (
	ReasonFree        = "free"
	ReasonFreePreview = "free_preview"
	ReasonEnrolled    = "enrolled"
	ReasonNotEnrolled = "not_enrolled"
	ReasonDripPending = "drip_pending"
	ReasonUnknownRule = "unknown_rule"
)

// Decision explains an unlock evaluation. UnlocksAt is set while a drip lesson is still pending.
type Decision struct {
	Unlocked  bool       `json:"unlocked"`
	Reason    string     `json:"reason"`
	UnlocksAt *time.Time `json:"unlocksAt,omitempty"`
}

func enrolled(enrollment *models.Enrollment, now time.Time) bool {
	return enrollment != nil && enrollment.IsActive(now)
}

func evaluateSection(section models.Section, enrollment *models.Enrollment, now time.Time) Decision {
	switch section.UnlockRule {
	case models.UnlockFree:
		return Decision{Unlocked: true, Reason: ReasonFree}
	case models.UnlockPaid, models.UnlockDrip:
		// section-level drip has no delay of its own
		if enrolled(enrollment, now) {
			return Decision{Unlocked: true, Reason: ReasonEnrolled}
		}
		return Decision{Reason: ReasonNotEnrolled}
	}
	return Decision{Reason: ReasonUnknownRule}
}

// IsSectionUnlocked evaluates the section's unlock rule. A nil enrollment means not enrolled.
func IsSectionUnlocked(section models.Section, enrollment *models.Enrollment, now time.Time) bool {
	return evaluateSection(section, enrollment, now).Unlocked
}

// EvaluateLesson applies the free preview override, then the section rule, then the lesson's
// drip delay when the section uses the drip rule.
func EvaluateLesson(section models.Section, lesson models.Lesson, enrollment *models.Enrollment, now time.Time) Decision {
	if lesson.IsFreePreview {
		return Decision{Unlocked: true, Reason: ReasonFreePreview}
	}

	decision := evaluateSection(section, enrollment, now)
	if !decision.Unlocked || section.UnlockRule != models.UnlockDrip || lesson.DripDelayDays <= 0 {
		return decision
	}

	unlocksAt := enrollment.EnrolledAt.AddDate(0, 0, lesson.DripDelayDays)
	if now.Before(unlocksAt) {
		return Decision{Reason: ReasonDripPending, UnlocksAt: &unlocksAt}
	}
	return decision
}

func IsLessonUnlocked(section models.Section, lesson models.Lesson, enrollment *models.Enrollment, now time.Time) bool {
	return EvaluateLesson(section, lesson, enrollment, now).Unlocked
}

// EvaluateCompletion reports whether the lesson counts as complete for progress.
// A record already marked complete stays complete whatever the new telemetry says.
func EvaluateCompletion(lesson models.Lesson, progress models.Progress) bool {
	if progress.Completed {
		return true
	}
	switch lesson.CompletionRule {
	case models.CompletionManual:
		return false
	case models.CompletionWatchPercentage:
		return progress.ProgressPercentage >= lesson.RequiredWatchPercentage()
	}
	return false
}
