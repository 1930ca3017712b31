package service

import (
	"github.com/gogotex/gogotex/backend/course-service/internal/course"
)

// Client-facing not-found messages. Each names the level and the copy
// (standalone or embedded) where the lookup failed.
const (
	msgCourseNotFound          = "Course not found."
	msgModuleNotFound          = "Module not found."
	msgModuleNotInCourse       = "Module not found in course."
	msgLessonNotFound          = "Lesson not found."
	msgLessonNotInModule       = "Lesson not found in module."
	msgLessonNotInCourseModule = "Lesson not found in course module."
)

func findCourse(cs []course.Course, id int, msg string) (int, error) {
	for i := range cs {
		if cs[i].ID == id {
			return i, nil
		}
	}
	return -1, course.NotFound(course.LevelCourse, msg)
}

func findModule(ms []course.Module, id int, msg string) (int, error) {
	for i := range ms {
		if ms[i].ID == id {
			return i, nil
		}
	}
	return -1, course.NotFound(course.LevelModule, msg)
}

func findLesson(ls []course.Lesson, id int, msg string) (int, error) {
	for i := range ls {
		if ls[i].ID == id {
			return i, nil
		}
	}
	return -1, course.NotFound(course.LevelLesson, msg)
}

// resolveModule walks course → module through the embedded copies. The course
// is checked before the module.
func resolveModule(cs []course.Course, courseID, moduleID int) (*course.Course, *course.Module, error) {
	ci, err := findCourse(cs, courseID, msgCourseNotFound)
	if err != nil {
		return nil, nil, err
	}
	c := &cs[ci]
	mi, err := findModule(c.Modules, moduleID, msgModuleNotFound)
	if err != nil {
		return c, nil, err
	}
	return c, &c.Modules[mi], nil
}

// resolveLesson walks course → module → lesson through the embedded copies.
func resolveLesson(cs []course.Course, courseID, moduleID, lessonID int) (*course.Lesson, error) {
	_, m, err := resolveModule(cs, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	li, err := findLesson(m.Lessons, lessonID, msgLessonNotFound)
	if err != nil {
		return nil, err
	}
	return &m.Lessons[li], nil
}

// lessonPath holds the indexes of every copy of one lesson.
type lessonPath struct {
	standalone     int // lessons collection
	module         int // modules collection
	inModule       int // module.Lessons
	course         int // courses collection
	courseModule   int // course.Modules
	inCourseModule int // course.Modules[].Lessons
}

// locateLesson finds all three copies of a lesson. Standalone copies are
// checked before embedded ones; the first absent level aborts the lookup.
func locateLesson(cs []course.Course, ms []course.Module, ls []course.Lesson, courseID, moduleID, lessonID int) (lessonPath, error) {
	var p lessonPath
	var err error
	if p.standalone, err = findLesson(ls, lessonID, msgLessonNotFound); err != nil {
		return p, err
	}
	if p.module, err = findModule(ms, moduleID, msgModuleNotFound); err != nil {
		return p, err
	}
	if p.inModule, err = findLesson(ms[p.module].Lessons, lessonID, msgLessonNotInModule); err != nil {
		return p, err
	}
	if p.course, err = findCourse(cs, courseID, msgCourseNotFound); err != nil {
		return p, err
	}
	if p.courseModule, err = findModule(cs[p.course].Modules, moduleID, msgModuleNotInCourse); err != nil {
		return p, err
	}
	if p.inCourseModule, err = findLesson(cs[p.course].Modules[p.courseModule].Lessons, lessonID, msgLessonNotInCourseModule); err != nil {
		return p, err
	}
	return p, nil
}

// modulePath holds the indexes of both copies of one module.
type modulePath struct {
	standalone int // modules collection
	course     int // courses collection
	inCourse   int // course.Modules
}

func locateModule(cs []course.Course, ms []course.Module, courseID, moduleID int) (modulePath, error) {
	var p modulePath
	var err error
	if p.standalone, err = findModule(ms, moduleID, msgModuleNotFound); err != nil {
		return p, err
	}
	if p.course, err = findCourse(cs, courseID, msgCourseNotFound); err != nil {
		return p, err
	}
	if p.inCourse, err = findModule(cs[p.course].Modules, moduleID, msgModuleNotInCourse); err != nil {
		return p, err
	}
	return p, nil
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i:i], s[i+1:]...)
}
