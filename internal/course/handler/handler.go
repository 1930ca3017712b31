package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/service"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"github.com/gogotex/gogotex/backend/course-service/pkg/middleware"
)

const (
	msgDeleted       = "Deleted successfully."
	msgInternalError = "Internal Server Error."
)

type courseHandler struct {
	svc service.Service
}

// RegisterCourseRoutes mounts the course, module and lesson endpoints under /api/courses.
func RegisterCourseRoutes(r *gin.Engine, svc service.Service) {
	registerValidations()
	h := &courseHandler{svc: svc}

	g := r.Group("/api/courses")
	g.GET("", h.listCourses)
	g.POST("", h.createCourse)
	g.GET("/:courseId", h.getCourse)
	g.PUT("/:courseId", h.updateCourse)
	g.DELETE("/:courseId", h.deleteCourse)

	g.GET("/:courseId/modules", h.listModules)
	g.POST("/:courseId/modules", h.createModule)
	g.GET("/:courseId/modules/:moduleId", h.getModule)
	g.PUT("/:courseId/modules/:moduleId", h.updateModule)
	g.DELETE("/:courseId/modules/:moduleId", h.deleteModule)

	g.GET("/:courseId/modules/:moduleId/lessons", h.listLessons)
	g.POST("/:courseId/modules/:moduleId/lessons", h.createLesson)
	g.GET("/:courseId/modules/:moduleId/lessons/:lessonId", h.getLesson)
	g.PUT("/:courseId/modules/:moduleId/lessons/:lessonId", h.updateLesson)
	g.DELETE("/:courseId/modules/:moduleId/lessons/:lessonId", h.deleteLesson)
}

// Exporter writes a snapshot of every collection and returns the object keys.
type Exporter interface {
	Export(ctx context.Context) ([]string, error)
}

// RegisterSnapshotRoutes mounts POST /api/admin/snapshots.
func RegisterSnapshotRoutes(r *gin.Engine, exp Exporter) {
	r.POST("/api/admin/snapshots", func(c *gin.Context) {
		keys, err := exp.Export(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"keys": keys})
	})
}

func respondError(c *gin.Context, err error) {
	var nf *course.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"message": nf.Message})
		return
	}
	logger.Errorf("%s %s [%s]: %v", c.Request.Method, c.FullPath(), middleware.RequestID(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternalError})
}

// pathIDs parses the named path ids in order and stops at the first invalid
// one. Ids must be non-negative integers.
func pathIDs(c *gin.Context, levels ...course.Level) ([]int, bool) {
	ids := make([]int, len(levels))
	for i, level := range levels {
		n, err := strconv.Atoi(c.Param(string(level) + "Id"))
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid %s ID. It must be a positive integer.", level)})
			return nil, false
		}
		ids[i] = n
	}
	return ids, true
}

func bindBody(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		return false
	}
	return true
}

// pageQuery reads ?page and ?limit; anything unparsable is left to the defaults.
func pageQuery(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return service.Page{Page: page, Limit: limit}
}

func (h *courseHandler) listCourses(c *gin.Context) {
	list, err := h.svc.ListCourses(c.Request.Context(), pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *courseHandler) createCourse(c *gin.Context) {
	var req courseRequest
	if !bindBody(c, &req) {
		return
	}
	created, err := h.svc.CreateCourse(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"newCourse": created})
}

func (h *courseHandler) getCourse(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse)
	if !ok {
		return
	}
	got, err := h.svc.GetCourse(c.Request.Context(), ids[0])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (h *courseHandler) updateCourse(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse)
	if !ok {
		return
	}
	var req coursePatchRequest
	if !bindBody(c, &req) {
		return
	}
	if _, err := h.svc.UpdateCourse(c.Request.Context(), ids[0], req.patch()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *courseHandler) deleteCourse(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse)
	if !ok {
		return
	}
	if err := h.svc.DeleteCourse(c.Request.Context(), ids[0]); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *courseHandler) listModules(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse)
	if !ok {
		return
	}
	list, err := h.svc.ListModules(c.Request.Context(), ids[0], pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *courseHandler) createModule(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse)
	if !ok {
		return
	}
	var req moduleRequest
	if !bindBody(c, &req) {
		return
	}
	created, err := h.svc.CreateModule(c.Request.Context(), ids[0], req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *courseHandler) getModule(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule)
	if !ok {
		return
	}
	got, err := h.svc.GetModule(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (h *courseHandler) updateModule(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule)
	if !ok {
		return
	}
	var req modulePatchRequest
	if !bindBody(c, &req) {
		return
	}
	updated, err := h.svc.UpdateModule(c.Request.Context(), ids[0], ids[1], req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"module": updated})
}

func (h *courseHandler) deleteModule(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule)
	if !ok {
		return
	}
	if err := h.svc.DeleteModule(c.Request.Context(), ids[0], ids[1]); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

func (h *courseHandler) listLessons(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule)
	if !ok {
		return
	}
	list, err := h.svc.ListLessons(c.Request.Context(), ids[0], ids[1], pageQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *courseHandler) createLesson(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule)
	if !ok {
		return
	}
	var req lessonRequest
	if !bindBody(c, &req) {
		return
	}
	created, err := h.svc.CreateLesson(c.Request.Context(), ids[0], ids[1], req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *courseHandler) getLesson(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule, course.LevelLesson)
	if !ok {
		return
	}
	got, err := h.svc.GetLesson(c.Request.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (h *courseHandler) updateLesson(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule, course.LevelLesson)
	if !ok {
		return
	}
	var req lessonPatchRequest
	if !bindBody(c, &req) {
		return
	}
	if _, err := h.svc.UpdateLesson(c.Request.Context(), ids[0], ids[1], ids[2], req.patch()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *courseHandler) deleteLesson(c *gin.Context) {
	ids, ok := pathIDs(c, course.LevelCourse, course.LevelModule, course.LevelLesson)
	if !ok {
		return
	}
	if err := h.svc.DeleteLesson(c.Request.Context(), ids[0], ids[1], ids[2]); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}
