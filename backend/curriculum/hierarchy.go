package curriculum

import (
	"sort"

	"lmsconsole/backend/models"
)

// OrderLessons puts lessons in curriculum order: by the orderIndex of their section (sectionRank)
// and then by their own orderIndex. Lessons of sections missing from sectionRank are dropped,
// they are not reachable from the course.
func OrderLessons(lessons []models.Lesson, sectionRank map[string]int) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if _, ok := sectionRank[lesson.SectionID]; ok {
			out = append(out, lesson)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := sectionRank[out[i].SectionID], sectionRank[out[j].SectionID]
		if ri != rj {
			return ri < rj
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}
