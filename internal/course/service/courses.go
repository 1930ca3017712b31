package service

import (
	"context"

	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
)

func (s *coordinator) ListCourses(ctx context.Context, p Page) (*CourseList, error) {
	p = p.Normalize()
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debugf("list courses: %d total", len(cs))
	return &CourseList{Page: p.Page, Limit: p.Limit, Total: len(cs), Courses: paginate(cs, p)}, nil
}

func (s *coordinator) GetCourse(ctx context.Context, courseID int) (*course.Course, error) {
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	ci, err := findCourse(cs, courseID, msgCourseNotFound)
	if err != nil {
		return nil, err
	}
	return &cs[ci], nil
}

// CreateCourse allocates ids for the course, each module and each lesson, and
// appends copies to all three collections.
func (s *coordinator) CreateCourse(ctx context.Context, in CourseInput) (*course.Course, error) {
	var created course.Course
	err := s.mutate(ctx, "create_course", repository.AllKinds, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ms, err := loadModules(tx)
		if err != nil {
			return err
		}
		ls, err := loadLessons(tx)
		if err != nil {
			return err
		}

		moduleIDs := course.NewAllocator(course.ModuleIDs(ms))
		lessonIDs := course.NewAllocator(course.LessonIDs(ls))
		c := course.Course{
			ID:          course.NextID(course.CourseIDs(cs)),
			Title:       in.Title,
			Description: in.Description,
			Modules:     make([]course.Module, 0, len(in.Modules)),
		}
		for _, mi := range in.Modules {
			m := course.Module{ID: moduleIDs.Next(), Title: mi.Title, Lessons: make([]course.Lesson, 0, len(mi.Lessons))}
			for _, li := range mi.Lessons {
				l := li.lesson(lessonIDs.Next())
				m.Lessons = append(m.Lessons, l)
				ls = append(ls, l.Clone())
			}
			c.Modules = append(c.Modules, m)
			ms = append(ms, m.Clone())
		}
		cs = append(cs, c)

		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		if err := tx.Put(repository.KindLessons, ls); err != nil {
			return err
		}
		created = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCourse merges title and description; the embedded modules are left as-is.
func (s *coordinator) UpdateCourse(ctx context.Context, courseID int, p CoursePatch) (*course.Course, error) {
	var updated course.Course
	err := s.mutate(ctx, "update_course", []repository.Kind{repository.KindCourses}, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ci, err := findCourse(cs, courseID, msgCourseNotFound)
		if err != nil {
			return err
		}
		if p.Title != nil {
			cs[ci].Title = *p.Title
		}
		if p.Description != nil {
			cs[ci].Description = *p.Description
		}
		updated = cs[ci].Clone()
		return tx.Put(repository.KindCourses, cs)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCourse removes the course record with its embedded modules. The
// standalone module and lesson records are kept.
func (s *coordinator) DeleteCourse(ctx context.Context, courseID int) error {
	return s.mutate(ctx, "delete_course", []repository.Kind{repository.KindCourses}, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ci, err := findCourse(cs, courseID, msgCourseNotFound)
		if err != nil {
			return err
		}
		return tx.Put(repository.KindCourses, removeAt(cs, ci))
	})
}
