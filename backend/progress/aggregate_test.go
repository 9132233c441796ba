package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/models"
)

func lessonsNamed(ids ...string) []models.Lesson {
	out := make([]models.Lesson, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Lesson{ID: id})
	}
	return out
}

func done(userID, lessonID string) models.Progress {
	return models.Progress{UserID: userID, LessonID: lessonID, Completed: true}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(3, 3))
	assert.Equal(t, 100, Percentage(5, 3))
}

func TestAggregateStudentProgress(t *testing.T) {
	lessons := lessonsNamed("l1", "l2", "l3", "l4")

	t.Run("empty course", func(t *testing.T) {
		sp := AggregateStudentProgress("c", "u", nil, []models.Progress{done("u", "l1")})
		assert.Equal(t, 0, sp.Percentage)
		assert.Equal(t, 0, sp.TotalCount)
		assert.False(t, sp.IsComplete())
	})

	t.Run("counts distinct completed course lessons", func(t *testing.T) {
		records := []models.Progress{
			done("u", "l1"),
			done("u", "l1"),
			done("u", "other-course-lesson"),
			{UserID: "u", LessonID: "l2", ProgressPercentage: 90},
			done("someone-else", "l3"),
		}
		sp := AggregateStudentProgress("c", "u", lessons, records)
		assert.Equal(t, 1, sp.CompletedCount)
		assert.Equal(t, 4, sp.TotalCount)
		assert.Equal(t, 25, sp.Percentage)
	})

	t.Run("complete", func(t *testing.T) {
		var records []models.Progress
		for _, l := range lessons {
			records = append(records, done("u", l.ID))
		}
		sp := AggregateStudentProgress("c", "u", lessons, records)
		assert.Equal(t, 100, sp.Percentage)
		assert.True(t, sp.IsComplete())
	})
}

func TestAggregateCourseRoster(t *testing.T) {
	lessons := lessonsNamed("l1", "l2")
	records := []models.Progress{
		{UserID: "ann", LessonID: "l1"},
		done("bob", "l1"),
		done("cat", "l1"),
		done("dan", "l1"),
		done("dan", "l2"),
	}

	roster := AggregateCourseRoster("c", lessons, records)
	require.Len(t, roster, 4)

	var users []string
	for _, sp := range roster {
		users = append(users, sp.UserID)
		assert.True(t, sp.Percentage >= 0 && sp.Percentage <= 100)
	}
	assert.Equal(t, []string{"dan", "bob", "cat", "ann"}, users)
	assert.Equal(t, 100, roster[0].Percentage)
	assert.Equal(t, 50, roster[1].Percentage)
	assert.Equal(t, 0, roster[3].Percentage)

	assert.Empty(t, AggregateCourseRoster("c", lessons, nil))
}
