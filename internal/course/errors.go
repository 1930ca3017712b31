package course

import (
	"errors"
	"fmt"
)

// Level is one step of the course → module → lesson traversal path.
type Level string

const (
	LevelCourse Level = "course"
	LevelModule Level = "module"
	LevelLesson Level = "lesson"
)

// NotFoundError reports that an entity is absent at a specific level. Message
// is client-facing and names where the lookup failed.
type NotFoundError struct {
	Level   Level
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Level, e.Message)
}

// NotFound builds a NotFoundError for level with the given message.
func NotFound(level Level, message string) *NotFoundError {
	return &NotFoundError{Level: level, Message: message}
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
