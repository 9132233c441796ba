package curriculum

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

var errUnavailable = errors.New("store unavailable")

// failingStore fails the failOn-th Update call.
type failingStore struct {
	store.Store
	failOn  int
	updates int
}

func (f *failingStore) Update(ctx context.Context, collection, id string, patch store.Patch) error {
	f.updates++
	if f.updates == f.failOn {
		return errUnavailable
	}
	return f.Store.Update(ctx, collection, id, patch)
}

// batchingStore records batches and applies them in order.
type batchingStore struct {
	*store.MemoryStore
	batches int
}

func (b *batchingStore) UpdateBatch(ctx context.Context, mutations []store.Mutation) error {
	b.batches++
	for _, m := range mutations {
		if err := b.MemoryStore.Update(ctx, m.Collection, m.ID, m.Patch); err != nil {
			return err
		}
	}
	return nil
}

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LoggerConfig{Output: io.Discard})
}

func newTestService(s store.Store) *Service {
	return NewService(s, testLogger())
}

func intPtr(v int) *int { return &v }

func mustCourse(t *testing.T, svc *Service) models.Course {
	t.Helper()
	course, err := svc.CreateCourse(context.Background(), CreateCourse{Title: "Go in Practice", Price: 500})
	require.NoError(t, err)
	return course
}

func mustSections(t *testing.T, svc *Service, courseID string, titles ...string) []models.Section {
	t.Helper()
	var out []models.Section
	for _, title := range titles {
		section, err := svc.CreateSection(context.Background(), CreateSection{CourseID: courseID, Title: title})
		require.NoError(t, err)
		out = append(out, section)
	}
	return out
}

func mustLessons(t *testing.T, svc *Service, sectionID string, titles ...string) []models.Lesson {
	t.Helper()
	var out []models.Lesson
	for _, title := range titles {
		lesson, err := svc.CreateLesson(context.Background(), CreateLesson{
			SectionID: sectionID, Title: title, LessonType: models.LessonVideo,
		})
		require.NoError(t, err)
		out = append(out, lesson)
	}
	return out
}

func indexes(t *testing.T, svc *Service, courseID string) map[string]int {
	t.Helper()
	sections, err := svc.ListSections(context.Background(), courseID)
	require.NoError(t, err)
	out := make(map[string]int, len(sections))
	for _, s := range sections {
		out[s.ID] = s.OrderIndex
	}
	return out
}

func TestCreateCourseDefaults(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	course := mustCourse(t, svc)

	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.AccessLifetime, course.AccessType)
	assert.Equal(t, models.EnrollmentAuto, course.EnrollmentType)

	_, err := svc.CreateCourse(context.Background(), CreateCourse{Title: "   "})
	fields, ok := utils.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "title")
}

func TestCreateSectionAppendsAndInserts(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "A", "B")

	assert.Equal(t, 0, sections[0].OrderIndex)
	assert.Equal(t, 1, sections[1].OrderIndex)
	assert.Equal(t, models.UnlockPaid, sections[0].UnlockRule)

	first, err := svc.CreateSection(ctx, CreateSection{CourseID: course.ID, Title: "Intro", OrderIndex: intPtr(0)})
	require.NoError(t, err)

	idx := indexes(t, svc, course.ID)
	assert.Equal(t, 0, idx[first.ID])
	assert.Equal(t, 1, idx[sections[0].ID])
	assert.Equal(t, 2, idx[sections[1].ID])

	_, err = svc.CreateSection(ctx, CreateSection{CourseID: course.ID, Title: "Far", OrderIndex: intPtr(9)})
	assert.True(t, utils.IsValidation(err))

	_, err = svc.CreateSection(ctx, CreateSection{CourseID: "missing", Title: "X"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReorderSwapsAdjacentSections(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "S1", "S2")
	s1, s2 := sections[0], sections[1]

	require.NoError(t, svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: s1.ID, Direction: Down}))

	idx := indexes(t, svc, course.ID)
	assert.Equal(t, 1, idx[s1.ID])
	assert.Equal(t, 0, idx[s2.ID])
}

func TestReorderAtEdgesIsNoop(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "A", "B", "C")

	require.NoError(t, svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[0].ID, Direction: Up}))
	require.NoError(t, svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[2].ID, Direction: Down}))

	idx := indexes(t, svc, course.ID)
	for i, s := range sections {
		assert.Equal(t, i, idx[s.ID])
	}
}

func TestReorderErrors(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	mustSections(t, svc, course.ID, "A")

	err := svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: "missing", Direction: Up})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: "x", Direction: "left"})
	assert.True(t, utils.IsValidation(err))
}

func TestReorderKeepsPermutation(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	section := mustSections(t, svc, course.ID, "Only")[0]
	lessons := mustLessons(t, svc, section.ID, "L0", "L1", "L2", "L3", "L4")

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		dir := Up
		if rnd.Intn(2) == 0 {
			dir = Down
		}
		child := lessons[rnd.Intn(len(lessons))]
		require.NoError(t, svc.ReorderLesson(ctx, Reorder{ParentID: section.ID, ChildID: child.ID, Direction: dir}))
	}

	got, err := svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	order := make([]int, 0, len(got))
	for _, l := range got {
		order = append(order, l.OrderIndex)
	}
	sort.Ints(order)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestReorderSecondWriteFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newTestService(mem)
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "S1", "S2")

	failing := &failingStore{Store: mem, failOn: 2}
	svc.store = failing

	err := svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[0].ID, Direction: Down})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialReorder)
	assert.ErrorIs(t, err, errUnavailable)

	var perr *PartialReorderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, sections[0].ID, perr.Mutated)

	// no rollback: both sections now claim index 1
	idx := indexes(t, svc, course.ID)
	assert.Equal(t, 1, idx[sections[0].ID])
	assert.Equal(t, 1, idx[sections[1].ID])
}

func TestReorderFirstWriteFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := newTestService(mem)
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "S1", "S2")

	svc.store = &failingStore{Store: mem, failOn: 1}

	err := svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[1].ID, Direction: Up})
	assert.ErrorIs(t, err, errUnavailable)
	assert.False(t, errors.Is(err, ErrPartialReorder))

	idx := indexes(t, svc, course.ID)
	assert.Equal(t, 0, idx[sections[0].ID])
	assert.Equal(t, 1, idx[sections[1].ID])
}

func TestReorderUsesBatcher(t *testing.T) {
	bs := &batchingStore{MemoryStore: store.NewMemoryStore()}
	svc := newTestService(bs)
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "S1", "S2")

	require.NoError(t, svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[1].ID, Direction: Up}))
	assert.Equal(t, 1, bs.batches)

	idx := indexes(t, svc, course.ID)
	assert.Equal(t, 0, idx[sections[1].ID])
	assert.Equal(t, 1, idx[sections[0].ID])
}

func TestCreateLessonDerivesCourse(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	section := mustSections(t, svc, course.ID, "S")[0]

	lesson, err := svc.CreateLesson(ctx, CreateLesson{SectionID: section.ID, Title: "Intro", LessonType: models.LessonVideo})
	require.NoError(t, err)
	assert.Equal(t, course.ID, lesson.CourseID)
	assert.Equal(t, models.CompletionWatchPercentage, lesson.CompletionRule)
	assert.Equal(t, models.DefaultWatchPercentage, lesson.WatchPercentageRequired)

	pdf, err := svc.CreateLesson(ctx, CreateLesson{SectionID: section.ID, Title: "Notes", LessonType: models.LessonPDF})
	require.NoError(t, err)
	assert.Equal(t, models.CompletionManual, pdf.CompletionRule)
	assert.Equal(t, 1, pdf.OrderIndex)

	_, err = svc.CreateLesson(ctx, CreateLesson{SectionID: section.ID, CourseID: "other", Title: "X", LessonType: models.LessonPDF})
	fields, ok := utils.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "courseId")

	n, err := svc.store.Count(ctx, store.Lessons, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQuizMarksValidation(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	section := mustSections(t, svc, course.ID, "S")[0]
	lesson := mustLessons(t, svc, section.ID, "L")[0]

	_, err := svc.CreateQuiz(ctx, CreateQuiz{LessonID: lesson.ID, Title: "Q", TotalMarks: 10, PassingMarks: 11})
	fields, ok := utils.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "passingMarks")

	quiz, err := svc.CreateQuiz(ctx, CreateQuiz{LessonID: lesson.ID, Title: "Q", TotalMarks: 10, PassingMarks: 6})
	require.NoError(t, err)
	assert.Equal(t, course.ID, quiz.CourseID)

	_, err = svc.UpdateQuiz(ctx, quiz.ID, UpdateQuiz{TotalMarks: intPtr(5)})
	assert.True(t, utils.IsValidation(err))

	updated, err := svc.UpdateQuiz(ctx, quiz.ID, UpdateQuiz{TotalMarks: intPtr(20), PassingMarks: intPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.TotalMarks)
	assert.Equal(t, 15, updated.PassingMarks)
}

func TestDeleteSectionCascadesAndClosesGap(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "A", "B", "C")
	lessons := mustLessons(t, svc, sections[1].ID, "B1", "B2")
	_, err := svc.CreateQuiz(ctx, CreateQuiz{LessonID: lessons[0].ID, Title: "Q", TotalMarks: 10, PassingMarks: 5})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSection(ctx, sections[1].ID))

	for _, collection := range []string{store.Lessons, store.Quizzes} {
		n, err := svc.store.Count(ctx, collection, nil)
		require.NoError(t, err)
		assert.Zero(t, n, collection)
	}
	idx := indexes(t, svc, course.ID)
	assert.Equal(t, map[string]int{sections[0].ID: 0, sections[2].ID: 1}, idx)

	assert.ErrorIs(t, svc.DeleteSection(ctx, sections[1].ID), store.ErrNotFound)
}

func TestDeleteLessonClosesGap(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	section := mustSections(t, svc, course.ID, "S")[0]
	lessons := mustLessons(t, svc, section.ID, "L0", "L1", "L2")

	require.NoError(t, svc.DeleteLesson(ctx, lessons[0].ID))

	got, err := svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, lessons[1].ID, got[0].ID)
	assert.Equal(t, 0, got[0].OrderIndex)
	assert.Equal(t, 1, got[1].OrderIndex)
}

func TestDeleteCourseKeepsContentUntilPurged(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "A", "B")
	mustLessons(t, svc, sections[0].ID, "L")

	require.NoError(t, svc.DeleteCourse(ctx, course.ID))
	n, err := svc.store.Count(ctx, store.Sections, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.PurgeCourseContent(ctx, course.ID))
	for _, collection := range []string{store.Sections, store.Lessons} {
		n, err = svc.store.Count(ctx, collection, nil)
		require.NoError(t, err)
		assert.Zero(t, n, collection)
	}
}

func TestLoadCurriculum(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	sections := mustSections(t, svc, course.ID, "A", "B")
	a := mustLessons(t, svc, sections[0].ID, "A1", "A2")
	b := mustLessons(t, svc, sections[1].ID, "B1")
	_, err := svc.CreateQuiz(ctx, CreateQuiz{LessonID: a[1].ID, Title: "Q", TotalMarks: 10, PassingMarks: 5})
	require.NoError(t, err)
	require.NoError(t, svc.ReorderSection(ctx, Reorder{ParentID: course.ID, ChildID: sections[1].ID, Direction: Up}))

	tree, err := svc.LoadCurriculum(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 2)
	assert.Equal(t, sections[1].ID, tree.Sections[0].ID)
	assert.Len(t, tree.Sections[1].Lessons[1].Quizzes, 1)
	assert.Empty(t, tree.Sections[1].Lessons[0].Quizzes)

	var ids []string
	for _, l := range tree.Lessons() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{b[0].ID, a[0].ID, a[1].ID}, ids)

	flat, err := svc.CourseLessons(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, flat, 3)
	assert.Equal(t, b[0].ID, flat[0].ID)
}

func TestUpdateCourseLeavesRating(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := context.Background()
	course := mustCourse(t, svc)
	require.NoError(t, svc.store.Update(ctx, store.Courses, course.ID, store.Patch{"averageRating": 4.5}))

	title := "Renamed"
	updated, err := svc.UpdateCourse(ctx, course.ID, UpdateCourse{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 4.5, updated.AverageRating)
	assert.Equal(t, float64(500), updated.Price)

	_, err = svc.UpdateCourse(ctx, "missing", UpdateCourse{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
