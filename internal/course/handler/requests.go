package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/service"
)

type contentRequest struct {
	Type course.ContentType `json:"type" binding:"required,contenttype"`
	Data string             `json:"data" binding:"required"`
}

type lessonRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Topics      []string         `json:"topics" binding:"required"`
	Content     []contentRequest `json:"content" binding:"required,dive"`
}

type moduleRequest struct {
	Title   string          `json:"title" binding:"required"`
	Lessons []lessonRequest `json:"lessons" binding:"omitempty,dive"`
}

type courseRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Modules     []moduleRequest `json:"modules" binding:"required,dive"`
}

type coursePatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// moduleLessonRequest is a lesson inside a module update; a known id keeps
// its identity, anything else is created.
type moduleLessonRequest struct {
	ID int `json:"id"`
	lessonRequest
}

type modulePatchRequest struct {
	Title   *string               `json:"title"`
	Lessons []moduleLessonRequest `json:"lessons" binding:"omitempty,dive"`
}

type lessonPatchRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Topics      []string         `json:"topics"`
	Content     []contentRequest `json:"content" binding:"omitempty,dive"`
}

func contents(in []contentRequest) []course.Content {
	if in == nil {
		return nil
	}
	out := make([]course.Content, len(in))
	for i, c := range in {
		out[i] = course.Content{Type: c.Type, Data: c.Data}
	}
	return out
}

func (r lessonRequest) input() service.LessonInput {
	return service.LessonInput{Title: r.Title, Description: r.Description, Topics: r.Topics, Content: contents(r.Content)}
}

func (r moduleRequest) input() service.ModuleInput {
	in := service.ModuleInput{Title: r.Title}
	for _, l := range r.Lessons {
		in.Lessons = append(in.Lessons, l.input())
	}
	return in
}

func (r courseRequest) input() service.CourseInput {
	in := service.CourseInput{Title: r.Title, Description: r.Description, Modules: make([]service.ModuleInput, 0, len(r.Modules))}
	for _, m := range r.Modules {
		in.Modules = append(in.Modules, m.input())
	}
	return in
}

// An empty string in an update body keeps the stored value.
func present(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (r coursePatchRequest) patch() service.CoursePatch {
	return service.CoursePatch{Title: present(r.Title), Description: present(r.Description)}
}

func (r modulePatchRequest) patch() service.ModulePatch {
	p := service.ModulePatch{Title: present(r.Title)}
	if r.Lessons != nil {
		p.Lessons = make([]course.Lesson, len(r.Lessons))
		for i, l := range r.Lessons {
			p.Lessons[i] = course.Lesson{
				ID:          l.ID,
				Title:       l.Title,
				Description: l.Description,
				Topics:      l.Topics,
				Content:     contents(l.Content),
			}
		}
	}
	return p
}

func (r lessonPatchRequest) patch() service.LessonPatch {
	return service.LessonPatch{
		Title:       present(r.Title),
		Description: present(r.Description),
		Topics:      r.Topics,
		Content:     contents(r.Content),
	}
}

var setupValidator sync.Once

// registerValidations reports json field names in validation errors and adds
// the contenttype rule to gin's validator.
func registerValidations() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
			return course.ContentType(fl.Field().String()).Valid()
		})
	})
}

// validationMessage renders the first binding failure as a client message.
func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "Invalid request body."
	}
	fe := ves[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "contenttype":
		names := make([]string, len(course.ContentTypes))
		for i, t := range course.ContentTypes {
			names[i] = string(t)
		}
		return fmt.Sprintf("%q must be one of [%s]", field, strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
