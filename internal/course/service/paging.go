package service

import (
	"github.com/gogotex/gogotex/backend/course-service/internal/course"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page selects a 1-based page of Limit items.
type Page struct {
	Page  int
	Limit int
}

// Normalize replaces missing or out-of-range values with defaults.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// paginate slices [(page-1)*limit, page*limit). Pages past the end yield an
// empty, non-nil slice. The page count is checked before multiplying so a
// huge page number cannot overflow the offset.
func paginate[T any](items []T, p Page) []T {
	if p.Page < 1 || p.Limit < 1 {
		return []T{}
	}
	pages := (len(items) + p.Limit - 1) / p.Limit
	if p.Page-1 >= pages {
		return []T{}
	}
	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type CourseList struct {
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int             `json:"totalCourses"`
	Courses []course.Course `json:"courses"`
}

type ModuleList struct {
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int             `json:"totalModules"`
	Modules []course.Module `json:"modules"`
}

type LessonList struct {
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int             `json:"totalLessons"`
	Lessons []course.Lesson `json:"lessons"`
}
