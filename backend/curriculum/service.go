// Package curriculum edits the Course -> Section -> Lesson -> Quiz hierarchy and keeps sibling
// orderIndex values dense and zero-based.
package curriculum

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"lmsconsole/backend/models"
	"lmsconsole/backend/store"
	"lmsconsole/backend/utils"
)

type Service struct {
	store  store.Store
	logger *utils.Logger
	now    func() time.Time
}

func NewService(s store.Store, logger *utils.Logger) *Service {
	return &Service{store: s, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Courses

func (s *Service) CreateCourse(ctx context.Context, cmd CreateCourse) (models.Course, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Course{}, err
	}

	now := s.now()
	course := models.Course{
		OwnerID:            cmd.OwnerID,
		Title:              utils.CleanString(cmd.Title),
		ShortDesc:          cmd.ShortDesc,
		Description:        cmd.Description,
		Price:              cmd.Price,
		Currency:           utils.CleanString(cmd.Currency),
		AccessType:         cmd.AccessType,
		AccessDurationDays: cmd.AccessDurationDays,
		EnrollmentType:     cmd.EnrollmentType,
		Certificate:        cmd.Certificate,
		IsPublished:        cmd.IsPublished,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if course.AccessType == "" {
		course.AccessType = models.AccessLifetime
	}
	if course.EnrollmentType == "" {
		course.EnrollmentType = models.EnrollmentAuto
	}

	id, err := s.store.Create(ctx, store.Courses, course)
	if err != nil {
		return models.Course{}, errors.Wrap(err, "creating course")
	}
	course.ID = id
	return course, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	if err := s.store.Get(ctx, store.Courses, id, &course); err != nil {
		return models.Course{}, errors.Wrapf(err, "course %s", id)
	}
	return course, nil
}

// ListCourses returns courses in creation order.
func (s *Service) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	if err := s.store.Query(ctx, store.Courses, &courses, nil); err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return courses, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id string, cmd UpdateCourse) (models.Course, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Course{}, err
	}
	patch := cmd.patch()
	patch["updatedAt"] = s.now()
	if err := s.store.Update(ctx, store.Courses, id, patch); err != nil {
		return models.Course{}, errors.Wrapf(err, "updating course %s", id)
	}
	return s.GetCourse(ctx, id)
}

// DeleteCourse removes the course document only. Use PurgeCourseContent first to drop its sections.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	return errors.Wrapf(s.store.Delete(ctx, store.Courses, id), "deleting course %s", id)
}

// PurgeCourseContent deletes every section of the course with its lessons and quizzes.
// Enrollments, orders, progress and reviews are kept.
func (s *Service) PurgeCourseContent(ctx context.Context, courseID string) error {
	sections, err := s.ListSections(ctx, courseID)
	if err != nil {
		return err
	}
	for _, section := range sections {
		if err = s.deleteSectionTree(ctx, section.ID); err != nil {
			return err
		}
	}
	s.logger.Infof("purged %d sections of course %s", len(sections), courseID)
	return nil
}

// Sections

func (s *Service) CreateSection(ctx context.Context, cmd CreateSection) (models.Section, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Section{}, err
	}
	if _, err := s.GetCourse(ctx, cmd.CourseID); err != nil {
		return models.Section{}, err
	}

	list, err := s.siblings(ctx, store.Sections, "courseId", cmd.CourseID)
	if err != nil {
		return models.Section{}, err
	}
	index, err := insertIndex(cmd.OrderIndex, len(list))
	if err != nil {
		return models.Section{}, err
	}

	now := s.now()
	section := models.Section{
		CourseID:    cmd.CourseID,
		Title:       utils.CleanString(cmd.Title),
		Description: cmd.Description,
		OrderIndex:  index,
		UnlockRule:  cmd.UnlockRule,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if section.UnlockRule == "" {
		section.UnlockRule = models.UnlockPaid
	}

	if err = s.shift(ctx, store.Sections, after(list, index), 1); err != nil {
		return models.Section{}, err
	}
	id, err := s.store.Create(ctx, store.Sections, section)
	if err != nil {
		return models.Section{}, errors.Wrap(err, "creating section")
	}
	section.ID = id
	return section, nil
}

func (s *Service) GetSection(ctx context.Context, id string) (models.Section, error) {
	var section models.Section
	if err := s.store.Get(ctx, store.Sections, id, &section); err != nil {
		return models.Section{}, errors.Wrapf(err, "section %s", id)
	}
	return section, nil
}

// ListSections returns the sections of a course by orderIndex.
func (s *Service) ListSections(ctx context.Context, courseID string) ([]models.Section, error) {
	sections := []models.Section{}
	err := s.store.Query(ctx, store.Sections, &sections,
		[]store.Filter{store.Eq("courseId", courseID)}, store.Asc("orderIndex"))
	if err != nil {
		return nil, errors.Wrapf(err, "listing sections of %s", courseID)
	}
	return sections, nil
}

func (s *Service) UpdateSection(ctx context.Context, id string, cmd UpdateSection) (models.Section, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Section{}, err
	}
	patch := cmd.patch()
	patch["updatedAt"] = s.now()
	if err := s.store.Update(ctx, store.Sections, id, patch); err != nil {
		return models.Section{}, errors.Wrapf(err, "updating section %s", id)
	}
	return s.GetSection(ctx, id)
}

// DeleteSection deletes the section with its lessons and quizzes, then closes the gap it leaves.
func (s *Service) DeleteSection(ctx context.Context, id string) error {
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return err
	}
	if err = s.deleteSectionTree(ctx, id); err != nil {
		return err
	}

	list, err := s.siblings(ctx, store.Sections, "courseId", section.CourseID)
	if err != nil {
		return err
	}
	return s.shift(ctx, store.Sections, after(list, section.OrderIndex+1), -1)
}

func (s *Service) deleteSectionTree(ctx context.Context, sectionID string) error {
	lessons, err := s.ListLessons(ctx, sectionID)
	if err != nil {
		return err
	}
	for _, lesson := range lessons {
		if err = s.deleteLessonTree(ctx, lesson.ID); err != nil {
			return err
		}
	}
	return errors.Wrapf(s.store.Delete(ctx, store.Sections, sectionID), "deleting section %s", sectionID)
}

// Lessons

func (s *Service) CreateLesson(ctx context.Context, cmd CreateLesson) (models.Lesson, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Lesson{}, err
	}
	section, err := s.GetSection(ctx, cmd.SectionID)
	if err != nil {
		return models.Lesson{}, err
	}
	if cmd.CourseID != "" && cmd.CourseID != section.CourseID {
		return models.Lesson{}, utils.NewValidationError(nil, utils.FieldError{
			Field: "courseId",
			Error: "courseId must match the course of the section",
		})
	}

	list, err := s.siblings(ctx, store.Lessons, "sectionId", section.ID)
	if err != nil {
		return models.Lesson{}, err
	}
	index, err := insertIndex(cmd.OrderIndex, len(list))
	if err != nil {
		return models.Lesson{}, err
	}

	now := s.now()
	lesson := models.Lesson{
		CourseID:                section.CourseID,
		SectionID:               section.ID,
		Title:                   utils.CleanString(cmd.Title),
		Description:             cmd.Description,
		OrderIndex:              index,
		LessonType:              cmd.LessonType,
		CompletionRule:          cmd.completionRule(),
		WatchPercentageRequired: cmd.WatchPercentageRequired,
		DripDelayDays:           cmd.DripDelayDays,
		IsFreePreview:           cmd.IsFreePreview,
		VideoURL:                cmd.VideoURL,
		DurationSeconds:         cmd.DurationSeconds,
		ResourceURL:             cmd.ResourceURL,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if lesson.CompletionRule == models.CompletionWatchPercentage && lesson.WatchPercentageRequired == 0 {
		lesson.WatchPercentageRequired = models.DefaultWatchPercentage
	}

	if err = s.shift(ctx, store.Lessons, after(list, index), 1); err != nil {
		return models.Lesson{}, err
	}
	id, err := s.store.Create(ctx, store.Lessons, lesson)
	if err != nil {
		return models.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	lesson.ID = id
	return lesson, nil
}

func (s *Service) GetLesson(ctx context.Context, id string) (models.Lesson, error) {
	var lesson models.Lesson
	if err := s.store.Get(ctx, store.Lessons, id, &lesson); err != nil {
		return models.Lesson{}, errors.Wrapf(err, "lesson %s", id)
	}
	return lesson, nil
}

// ListLessons returns the lessons of a section by orderIndex.
func (s *Service) ListLessons(ctx context.Context, sectionID string) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	err := s.store.Query(ctx, store.Lessons, &lessons,
		[]store.Filter{store.Eq("sectionId", sectionID)}, store.Asc("orderIndex"))
	if err != nil {
		return nil, errors.Wrapf(err, "listing lessons of %s", sectionID)
	}
	return lessons, nil
}

func (s *Service) UpdateLesson(ctx context.Context, id string, cmd UpdateLesson) (models.Lesson, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Lesson{}, err
	}
	patch := cmd.patch()
	patch["updatedAt"] = s.now()
	if err := s.store.Update(ctx, store.Lessons, id, patch); err != nil {
		return models.Lesson{}, errors.Wrapf(err, "updating lesson %s", id)
	}
	return s.GetLesson(ctx, id)
}

// DeleteLesson deletes the lesson with its quizzes and closes the gap among its siblings.
func (s *Service) DeleteLesson(ctx context.Context, id string) error {
	lesson, err := s.GetLesson(ctx, id)
	if err != nil {
		return err
	}
	if err = s.deleteLessonTree(ctx, id); err != nil {
		return err
	}

	list, err := s.siblings(ctx, store.Lessons, "sectionId", lesson.SectionID)
	if err != nil {
		return err
	}
	return s.shift(ctx, store.Lessons, after(list, lesson.OrderIndex+1), -1)
}

func (s *Service) deleteLessonTree(ctx context.Context, lessonID string) error {
	quizzes, err := s.ListQuizzes(ctx, lessonID)
	if err != nil {
		return err
	}
	for _, quiz := range quizzes {
		if err = s.store.Delete(ctx, store.Quizzes, quiz.ID); err != nil {
			return errors.Wrapf(err, "deleting quiz %s", quiz.ID)
		}
	}
	return errors.Wrapf(s.store.Delete(ctx, store.Lessons, lessonID), "deleting lesson %s", lessonID)
}

// Quizzes

func (s *Service) CreateQuiz(ctx context.Context, cmd CreateQuiz) (models.Quiz, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Quiz{}, err
	}
	lesson, err := s.GetLesson(ctx, cmd.LessonID)
	if err != nil {
		return models.Quiz{}, err
	}

	now := s.now()
	quiz := models.Quiz{
		LessonID:         lesson.ID,
		CourseID:         lesson.CourseID,
		Title:            utils.CleanString(cmd.Title),
		TotalMarks:       cmd.TotalMarks,
		PassingMarks:     cmd.PassingMarks,
		AttemptsAllowed:  cmd.AttemptsAllowed,
		TimeLimitMinutes: cmd.TimeLimitMinutes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.store.Create(ctx, store.Quizzes, quiz)
	if err != nil {
		return models.Quiz{}, errors.Wrap(err, "creating quiz")
	}
	quiz.ID = id
	return quiz, nil
}

func (s *Service) GetQuiz(ctx context.Context, id string) (models.Quiz, error) {
	var quiz models.Quiz
	if err := s.store.Get(ctx, store.Quizzes, id, &quiz); err != nil {
		return models.Quiz{}, errors.Wrapf(err, "quiz %s", id)
	}
	return quiz, nil
}

func (s *Service) ListQuizzes(ctx context.Context, lessonID string) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	err := s.store.Query(ctx, store.Quizzes, &quizzes, []store.Filter{store.Eq("lessonId", lessonID)})
	if err != nil {
		return nil, errors.Wrapf(err, "listing quizzes of %s", lessonID)
	}
	return quizzes, nil
}

func (s *Service) UpdateQuiz(ctx context.Context, id string, cmd UpdateQuiz) (models.Quiz, error) {
	if err := utils.Validate.Struct(cmd); err != nil {
		return models.Quiz{}, err
	}
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return models.Quiz{}, err
	}
	merged := cmd.merged(quiz)
	if err = utils.Validate.Struct(merged); err != nil {
		return models.Quiz{}, err
	}

	err = s.store.Update(ctx, store.Quizzes, id, store.Patch{
		"title":            merged.Title,
		"totalMarks":       merged.TotalMarks,
		"passingMarks":     merged.PassingMarks,
		"attemptsAllowed":  merged.AttemptsAllowed,
		"timeLimitMinutes": merged.TimeLimitMinutes,
		"updatedAt":        s.now(),
	})
	if err != nil {
		return models.Quiz{}, errors.Wrapf(err, "updating quiz %s", id)
	}
	return s.GetQuiz(ctx, id)
}

func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	return errors.Wrapf(s.store.Delete(ctx, store.Quizzes, id), "deleting quiz %s", id)
}

// LoadCurriculum returns the full tree of a course. Lessons of every section and quizzes of
// every lesson are loaded concurrently.
func (s *Service) LoadCurriculum(ctx context.Context, courseID string) (models.Curriculum, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return models.Curriculum{}, err
	}
	sections, err := s.ListSections(ctx, courseID)
	if err != nil {
		return models.Curriculum{}, err
	}

	tree := models.Curriculum{Course: course, Sections: make([]models.CurriculumSection, len(sections))}
	g, gctx := errgroup.WithContext(ctx)
	for i, section := range sections {
		tree.Sections[i].Section = section
		g.Go(func() error {
			lessons, err := s.ListLessons(gctx, section.ID)
			if err != nil {
				return err
			}
			tree.Sections[i].Lessons = make([]models.CurriculumLesson, len(lessons))
			for j, lesson := range lessons {
				tree.Sections[i].Lessons[j].Lesson = lesson
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return models.Curriculum{}, err
	}

	g, gctx = errgroup.WithContext(ctx)
	for i := range tree.Sections {
		for j := range tree.Sections[i].Lessons {
			lesson := &tree.Sections[i].Lessons[j]
			g.Go(func() error {
				quizzes, err := s.ListQuizzes(gctx, lesson.ID)
				if err != nil {
					return err
				}
				lesson.Quizzes = quizzes
				return nil
			})
		}
	}
	if err = g.Wait(); err != nil {
		return models.Curriculum{}, err
	}
	return tree, nil
}

// CourseLessons returns every lesson of the course in curriculum order.
func (s *Service) CourseLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	sections, err := s.ListSections(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rank := make(map[string]int, len(sections))
	for _, section := range sections {
		rank[section.ID] = section.OrderIndex
	}

	lessons := []models.Lesson{}
	err = s.store.Query(ctx, store.Lessons, &lessons, []store.Filter{store.Eq("courseId", courseID)})
	if err != nil {
		return nil, errors.Wrapf(err, "listing lessons of course %s", courseID)
	}
	return OrderLessons(lessons, rank), nil
}
