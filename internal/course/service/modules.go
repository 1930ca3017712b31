package service

import (
	"context"

	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
)

func (s *coordinator) ListModules(ctx context.Context, courseID int, p Page) (*ModuleList, error) {
	p = p.Normalize()
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	ci, err := findCourse(cs, courseID, msgCourseNotFound)
	if err != nil {
		return nil, err
	}
	ms := cs[ci].Modules
	return &ModuleList{Page: p.Page, Limit: p.Limit, Total: len(ms), Modules: paginate(ms, p)}, nil
}

func (s *coordinator) GetModule(ctx context.Context, courseID, moduleID int) (*course.Module, error) {
	cs, err := s.readCourses(ctx)
	if err != nil {
		return nil, err
	}
	_, m, err := resolveModule(cs, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateModule appends a new module to the modules collection and to the
// course. An unknown course aborts before anything is written, so no orphan
// module is left behind. Submitted lessons get ids and are appended to the
// lessons collection as well.
func (s *coordinator) CreateModule(ctx context.Context, courseID int, in ModuleInput) (*course.Module, error) {
	kinds := []repository.Kind{repository.KindCourses, repository.KindModules}
	if len(in.Lessons) > 0 {
		kinds = append(kinds, repository.KindLessons)
	}
	var created course.Module
	err := s.mutate(ctx, "create_module", kinds, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ci, err := findCourse(cs, courseID, msgCourseNotFound)
		if err != nil {
			return err
		}
		ms, err := loadModules(tx)
		if err != nil {
			return err
		}

		m := course.Module{
			ID:      course.NextID(course.ModuleIDs(ms)),
			Title:   in.Title,
			Lessons: make([]course.Lesson, 0, len(in.Lessons)),
		}
		if len(in.Lessons) > 0 {
			ls, err := loadLessons(tx)
			if err != nil {
				return err
			}
			lessonIDs := course.NewAllocator(course.LessonIDs(ls))
			for _, li := range in.Lessons {
				l := li.lesson(lessonIDs.Next())
				m.Lessons = append(m.Lessons, l)
				ls = append(ls, l.Clone())
			}
			if err := tx.Put(repository.KindLessons, ls); err != nil {
				return err
			}
		}

		ms = append(ms, m.Clone())
		cs[ci].Modules = append(cs[ci].Modules, m.Clone())
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateModule applies the same merge to the standalone module and to the
// copy embedded in the course.
func (s *coordinator) UpdateModule(ctx context.Context, courseID, moduleID int, p ModulePatch) (*course.Module, error) {
	kinds := []repository.Kind{repository.KindCourses, repository.KindModules}
	if p.Lessons != nil {
		kinds = append(kinds, repository.KindLessons)
	}
	var updated course.Module
	err := s.mutate(ctx, "update_module", kinds, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ms, err := loadModules(tx)
		if err != nil {
			return err
		}
		path, err := locateModule(cs, ms, courseID, moduleID)
		if err != nil {
			return err
		}

		var lessons []course.Lesson
		if p.Lessons != nil {
			ls, err := loadLessons(tx)
			if err != nil {
				return err
			}
			lessons, ls = reconcileLessons(ms[path.standalone].Lessons, p.Lessons, ls)
			if err := tx.Put(repository.KindLessons, ls); err != nil {
				return err
			}
		}

		apply := func(m *course.Module) {
			if p.Title != nil {
				m.Title = *p.Title
			}
			if lessons != nil {
				m.Lessons = make([]course.Lesson, len(lessons))
				for i, l := range lessons {
					m.Lessons[i] = l.Clone()
				}
			}
		}
		apply(&ms[path.standalone])
		apply(&cs[path.course].Modules[path.inCourse])

		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		if err := tx.Put(repository.KindCourses, cs); err != nil {
			return err
		}
		updated = ms[path.standalone].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// reconcileLessons computes a module's replacement lesson list and the lessons
// collection that matches it: lessons dropped from the module are removed,
// kept ones are overwritten, new ones are appended with fresh ids.
func reconcileLessons(current, submitted, collection []course.Lesson) ([]course.Lesson, []course.Lesson) {
	owned := make(map[int]bool, len(current))
	for _, l := range current {
		owned[l.ID] = true
	}
	alloc := course.NewAllocator(append(course.LessonIDs(collection), course.LessonIDs(current)...))

	next := make([]course.Lesson, 0, len(submitted))
	byID := make(map[int]course.Lesson, len(submitted))
	for _, l := range submitted {
		l = normalizeLesson(l.Clone())
		if !owned[l.ID] {
			l.ID = alloc.Next()
		} else if _, dup := byID[l.ID]; dup {
			l.ID = alloc.Next()
		}
		byID[l.ID] = l
		next = append(next, l)
	}

	out := make([]course.Lesson, 0, len(collection)+len(next))
	placed := make(map[int]bool, len(next))
	for _, l := range collection {
		if nl, ok := byID[l.ID]; ok && owned[l.ID] {
			out = append(out, nl.Clone())
			placed[l.ID] = true
			continue
		}
		if owned[l.ID] {
			continue
		}
		out = append(out, l)
	}
	for _, l := range next {
		if !placed[l.ID] {
			out = append(out, l.Clone())
		}
	}
	return next, out
}

// DeleteModule removes the standalone module and the copy embedded in the
// course. Its lessons stay in the lessons collection.
func (s *coordinator) DeleteModule(ctx context.Context, courseID, moduleID int) error {
	kinds := []repository.Kind{repository.KindCourses, repository.KindModules}
	return s.mutate(ctx, "delete_module", kinds, func(tx *repository.Tx) error {
		cs, err := loadCourses(tx)
		if err != nil {
			return err
		}
		ms, err := loadModules(tx)
		if err != nil {
			return err
		}
		path, err := locateModule(cs, ms, courseID, moduleID)
		if err != nil {
			return err
		}
		ms = removeAt(ms, path.standalone)
		cs[path.course].Modules = removeAt(cs[path.course].Modules, path.inCourse)
		if err := tx.Put(repository.KindModules, ms); err != nil {
			return err
		}
		return tx.Put(repository.KindCourses, cs)
	})
}
