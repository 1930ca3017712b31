package service

import (
	"context"

	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
)

func (s *coordinator) ListLessons(ctx context.Context, courseID, moduleID int, p Page) (*LessonList, error) {
	p = p.Normalize()
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	_, m, err := resolveModule(cs, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	return &LessonList{Page: p.Page, Limit: p.Limit, Total: len(m.Lessons), Lessons: paginate(m.Lessons, p)}, nil
}

func (s *coordinator) GetLesson(ctx context.Context, courseID, moduleID, lessonID int) (*course.Lesson, error) {
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	return resolveLesson(cs, courseID, moduleID, lessonID)
}

// CreateLesson appends the lesson to the lessons collection, the standalone
// module and the module embedded in the course. The module, the course and
// the module-in-course must all exist before anything is written.
func (s *coordinator) CreateLesson(ctx context.Context, courseID, moduleID int, in LessonInput) (*course.Lesson, error) {
	var created course.Lesson
	err := s.mutate(ctx, "create_lesson", repository.AllKinds, func(tx *repository.Tx) error {
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

		mi, err := findModule(ms, moduleID, msgModuleNotFound)
		if err != nil {
			return err
		}
		ci, err := findCourse(cs, courseID, msgCourseNotFound)
		if err != nil {
			return err
		}
		cmi, err := findModule(cs[ci].Modules, moduleID, msgModuleNotInCourse)
		if err != nil {
			return err
		}

		l := in.lesson(course.NextID(course.LessonIDs(ls)))
		ls = append(ls, l.Clone())
		ms[mi].Lessons = append(ms[mi].Lessons, l.Clone())
		cs[ci].Modules[cmi].Lessons = append(cs[ci].Modules[cmi].Lessons, l.Clone())

		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		if err := tx.Put(repository.KindLessons, ls); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateLesson applies one patch to all three copies of the lesson.
func (s *coordinator) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID int, p LessonPatch) (*course.Lesson, error) {
	var updated course.Lesson
	err := s.mutate(ctx, "update_lesson", repository.AllKinds, func(tx *repository.Tx) error {
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
		path, err := locateLesson(cs, ms, ls, courseID, moduleID, lessonID)
		if err != nil {
			return err
		}

		p.apply(&ls[path.standalone])
		p.apply(&ms[path.module].Lessons[path.inModule])
		p.apply(&cs[path.course].Modules[path.courseModule].Lessons[path.inCourseModule])

		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		if err := tx.Put(repository.KindLessons, ls); err != nil {
			return err
		}
		updated = ls[path.standalone].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLesson removes the lesson from all three places.
func (s *coordinator) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID int) error {
	return s.mutate(ctx, "delete_lesson", repository.AllKinds, func(tx *repository.Tx) error {
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
		path, err := locateLesson(cs, ms, ls, courseID, moduleID, lessonID)
		if err != nil {
			return err
		}

		ls = removeAt(ls, path.standalone)
		ms[path.module].Lessons = removeAt(ms[path.module].Lessons, path.inModule)
		cm := &cs[path.course].Modules[path.courseModule]
		cm.Lessons = removeAt(cm.Lessons, path.inCourseModule)

		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		return tx.Put(repository.KindLessons, ls)
	})
}
