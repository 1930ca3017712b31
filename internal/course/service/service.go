package service

import (
	"context"

	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"github.com/gogotex/gogotex/backend/course-service/pkg/metrics"
)

// Service defines the course business operations used by the handler layer.
//
// Modules and lessons are stored denormalized: a lesson lives in the lessons
// collection, inside its standalone module, and inside the module embedded in
// its course. Every mutation updates all copies under the locks of every
// collection it touches and persists nothing unless every level resolved.
type Service interface {
	ListCourses(ctx context.Context, p Page) (*CourseList, error)
	GetCourse(ctx context.Context, courseID int) (*course.Course, error)
	CreateCourse(ctx context.Context, in CourseInput) (*course.Course, error)
	UpdateCourse(ctx context.Context, courseID int, p CoursePatch) (*course.Course, error)
	DeleteCourse(ctx context.Context, courseID int) error

	ListModules(ctx context.Context, courseID int, p Page) (*ModuleList, error)
	GetModule(ctx context.Context, courseID, moduleID int) (*course.Module, error)
	CreateModule(ctx context.Context, courseID int, in ModuleInput) (*course.Module, error)
	UpdateModule(ctx context.Context, courseID, moduleID int, p ModulePatch) (*course.Module, error)
	DeleteModule(ctx context.Context, courseID, moduleID int) error

	ListLessons(ctx context.Context, courseID, moduleID int, p Page) (*LessonList, error)
	GetLesson(ctx context.Context, courseID, moduleID, lessonID int) (*course.Lesson, error)
	CreateLesson(ctx context.Context, courseID, moduleID int, in LessonInput) (*course.Lesson, error)
	UpdateLesson(ctx context.Context, courseID, moduleID, lessonID int, p LessonPatch) (*course.Lesson, error)
	DeleteLesson(ctx context.Context, courseID, moduleID, lessonID int) error
}

type LessonInput struct {
	Title       string
	Description string
	Topics      []string
	Content     []course.Content
}

func (in LessonInput) lesson(id int) course.Lesson {
	l := course.Lesson{ID: id, Title: in.Title, Description: in.Description, Topics: in.Topics, Content: in.Content}
	return normalizeLesson(l).Clone()
}

type ModuleInput struct {
	Title   string
	Lessons []LessonInput
}

type CourseInput struct {
	Title       string
	Description string
	Modules     []ModuleInput
}

// Patches: a nil field is absent and keeps the stored value.
type CoursePatch struct {
	Title       *string
	Description *string
}

// ModulePatch.Lessons, when non-nil, replaces the module's lessons. Lessons
// whose ID already belongs to the module keep it; all others get a new id.
type ModulePatch struct {
	Title   *string
	Lessons []course.Lesson
}

type LessonPatch struct {
	Title       *string
	Description *string
	Topics      []string
	Content     []course.Content
}

func (p LessonPatch) apply(l *course.Lesson) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Topics != nil {
		l.Topics = append([]string{}, p.Topics...)
	}
	if p.Content != nil {
		l.Content = append([]course.Content{}, p.Content...)
	}
}

func normalizeLesson(l course.Lesson) course.Lesson {
	if l.Topics == nil {
		l.Topics = []string{}
	}
	if l.Content == nil {
		l.Content = []course.Content{}
	}
	return l
}

type coordinator struct {
	store *repository.Store
}

// NewService returns a Service backed by the given record store.
func NewService(store *repository.Store) Service {
	return &coordinator{store: store}
}

// mutate runs fn as one locked read-modify-write and records the outcome.
func (s *coordinator) mutate(ctx context.Context, op string, kinds []repository.Kind, fn func(tx *repository.Tx) error) error {
	err := s.store.Update(ctx, kinds, fn)
	outcome := "ok"
	switch {
	case err == nil:
		logger.Infof("%s: success", op)
	case course.IsNotFound(err):
		outcome = "not_found"
		logger.Warnf("%s: %v", op, err)
	default:
		outcome = "error"
		logger.Errorf("%s: %v", op, err)
	}
	metrics.Mutations.WithLabelValues(op, outcome).Inc()
	return err
}

func loadCourses(tx *repository.Tx) ([]course.Course, error) {
	var cs []course.Course
	err := tx.Load(repository.KindCourses, &cs)
	return cs, err
}

func loadModules(tx *repository.Tx) ([]course.Module, error) {
	var ms []course.Module
	err := tx.Load(repository.KindModules, &ms)
	return ms, err
}

func loadLessons(tx *repository.Tx) ([]course.Lesson, error) {
	var ls []course.Lesson
	err := tx.Load(repository.KindLessons, &ls)
	return ls, err
}

func (s *coordinator) readCourses(ctx context.Context) ([]course.Course, error) {
	var cs []course.Course
	if err := s.store.Load(ctx, repository.KindCourses, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}
