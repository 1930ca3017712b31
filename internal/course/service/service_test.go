package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gogotex/gogotex/backend/course-service/internal/course"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func lessonIn(title string) LessonInput {
	return LessonInput{
		Title:       title,
		Description: title + " description",
		Topics:      []string{"t1"},
		Content:     []course.Content{{Type: course.ContentText, Data: "body of " + title}},
	}
}

type fixture struct {
	store *repository.Store
	svc   Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return &fixture{store: store, svc: NewService(store)}
}

func (f *fixture) all(t *testing.T) ([]course.Course, []course.Module, []course.Lesson) {
	t.Helper()
	ctx := context.Background()
	var cs []course.Course
	var ms []course.Module
	var ls []course.Lesson
	require.NoError(t, f.store.Load(ctx, repository.KindCourses, &cs))
	require.NoError(t, f.store.Load(ctx, repository.KindModules, &ms))
	require.NoError(t, f.store.Load(ctx, repository.KindLessons, &ls))
	return cs, ms, ls
}

func (f *fixture) snapshot(t *testing.T) map[repository.Kind][]byte {
	t.Helper()
	snap, err := f.store.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func requireNotFound(t *testing.T, err error, level course.Level, msg string) {
	t.Helper()
	var nf *course.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	require.Equal(t, level, nf.Level)
	require.Equal(t, msg, nf.Message)
}

func TestCreateCourseOnEmptyCollections(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.CreateCourse(context.Background(), CourseInput{
		Title:       "T",
		Description: "D",
		Modules: []ModuleInput{{
			Title:   "M1",
			Lessons: []LessonInput{{Title: "L1", Description: "d", Topics: []string{}, Content: []course.Content{}}},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.ID)
	require.Equal(t, 1, c.Modules[0].ID)
	require.Equal(t, 1, c.Modules[0].Lessons[0].ID)

	cs, ms, ls := f.all(t)
	require.Len(t, cs, 1)
	require.Len(t, ms, 1)
	require.Len(t, ls, 1)
}

func TestCreateCourseGrowsCollectionsAndIDsMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCourse(ctx, CourseInput{Title: "seed", Description: "d", Modules: []ModuleInput{{Title: "m", Lessons: []LessonInput{lessonIn("a")}}}})
	require.NoError(t, err)
	_, ms0, ls0 := f.all(t)

	const n, m = 3, 2
	in := CourseInput{Title: "big", Description: "d"}
	for i := 0; i < n; i++ {
		mod := ModuleInput{Title: "module"}
		for j := 0; j < m; j++ {
			mod.Lessons = append(mod.Lessons, lessonIn("lesson"))
		}
		in.Modules = append(in.Modules, mod)
	}
	c, err := f.svc.CreateCourse(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 2, c.ID)

	_, ms, ls := f.all(t)
	require.Len(t, ms, len(ms0)+n)
	require.Len(t, ls, len(ls0)+n*m)

	seen := map[int]bool{}
	for _, em := range c.Modules {
		sm := ms[mustFindModule(t, ms, em.ID)]
		require.Equal(t, em, sm)
		for _, el := range em.Lessons {
			require.False(t, seen[el.ID], "lesson id %d allocated twice", el.ID)
			seen[el.ID] = true
			require.Equal(t, el, ls[mustFindLesson(t, ls, el.ID)])
		}
	}
}

func mustFindModule(t *testing.T, ms []course.Module, id int) int {
	t.Helper()
	i, err := findModule(ms, id, "")
	require.NoError(t, err)
	return i
}

func mustFindLesson(t *testing.T, ls []course.Lesson, id int) int {
	t.Helper()
	i, err := findLesson(ls, id, "")
	require.NoError(t, err)
	return i
}

func TestUpdateCourseMergesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M"}}})
	require.NoError(t, err)

	got, err := f.svc.UpdateCourse(ctx, c.ID, CoursePatch{Description: strPtr("new description")})
	require.NoError(t, err)
	require.Equal(t, "T", got.Title)
	require.Equal(t, "new description", got.Description)
	require.Len(t, got.Modules, 1)

	_, err = f.svc.UpdateCourse(ctx, 99, CoursePatch{Title: strPtr("x")})
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M"}}})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCourse(ctx, c.ID))
	_, err = f.svc.GetCourse(ctx, c.ID)
	requireNotFound(t, err, course.LevelCourse, "Course not found.")

	// standalone copies are not part of a course delete
	_, ms, _ := f.all(t)
	require.Len(t, ms, 1)

	requireNotFound(t, f.svc.DeleteCourse(ctx, c.ID), course.LevelCourse, "Course not found.")
}

func TestCreateModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M1"}}})
	require.NoError(t, err)

	m, err := f.svc.CreateModule(ctx, c.ID, ModuleInput{Title: "M2", Lessons: []LessonInput{lessonIn("L")}})
	require.NoError(t, err)
	require.Equal(t, 2, m.ID)
	require.Len(t, m.Lessons, 1)

	got, err := f.svc.GetModule(ctx, c.ID, m.ID)
	require.NoError(t, err)
	require.Equal(t, *m, *got)

	_, ms, ls := f.all(t)
	require.Equal(t, *m, ms[mustFindModule(t, ms, m.ID)])
	require.Equal(t, m.Lessons[0], ls[mustFindLesson(t, ls, m.Lessons[0].ID)])
}

func TestCreateModuleUnknownCourseLeavesNoOrphan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{}})
	require.NoError(t, err)
	before := f.snapshot(t)

	_, err = f.svc.CreateModule(ctx, 42, ModuleInput{Title: "M"})
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
	require.Equal(t, before, f.snapshot(t))
}

func TestUpdateModulePropagatesToCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L")}}}})
	require.NoError(t, err)
	mid := c.Modules[0].ID

	m, err := f.svc.UpdateModule(ctx, c.ID, mid, ModulePatch{Title: strPtr("renamed")})
	require.NoError(t, err)
	require.Equal(t, "renamed", m.Title)
	require.Len(t, m.Lessons, 1)

	embedded, err := f.svc.GetModule(ctx, c.ID, mid)
	require.NoError(t, err)
	require.Equal(t, *m, *embedded)
}

func TestUpdateModuleReplacesLessonsEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{
		{Title: "M1", Lessons: []LessonInput{lessonIn("keep"), lessonIn("drop")}},
		{Title: "M2", Lessons: []LessonInput{lessonIn("other")}},
	}})
	require.NoError(t, err)
	keep := c.Modules[0].Lessons[0]
	drop := c.Modules[0].Lessons[1]
	other := c.Modules[1].Lessons[0]

	keep.Title = "kept and edited"
	fresh := course.Lesson{Title: "fresh", Description: "d", Topics: []string{}, Content: []course.Content{}}
	m, err := f.svc.UpdateModule(ctx, c.ID, c.Modules[0].ID, ModulePatch{Lessons: []course.Lesson{keep, fresh}})
	require.NoError(t, err)
	require.Len(t, m.Lessons, 2)
	require.Equal(t, keep.ID, m.Lessons[0].ID)
	require.Equal(t, 4, m.Lessons[1].ID)

	cs, ms, ls := f.all(t)
	require.Equal(t, *m, ms[mustFindModule(t, ms, m.ID)])
	require.Equal(t, *m, cs[0].Modules[0])
	require.Len(t, ls, 3)
	require.Equal(t, "kept and edited", ls[mustFindLesson(t, ls, keep.ID)].Title)
	_, err = findLesson(ls, drop.ID, "")
	require.Error(t, err)
	require.Equal(t, other, ls[mustFindLesson(t, ls, other.ID)])
}

func TestUpdateModuleNotFoundLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M"}}})
	require.NoError(t, err)
	other, err := f.svc.CreateCourse(ctx, CourseInput{Title: "O", Description: "D", Modules: []ModuleInput{}})
	require.NoError(t, err)
	before := f.snapshot(t)

	_, err = f.svc.UpdateModule(ctx, c.ID, 99, ModulePatch{Title: strPtr("x")})
	requireNotFound(t, err, course.LevelModule, "Module not found.")
	_, err = f.svc.UpdateModule(ctx, 99, c.Modules[0].ID, ModulePatch{Title: strPtr("x")})
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
	_, err = f.svc.UpdateModule(ctx, other.ID, c.Modules[0].ID, ModulePatch{Title: strPtr("x")})
	requireNotFound(t, err, course.LevelModule, "Module not found in course.")

	require.Equal(t, before, f.snapshot(t))
}

func TestDeleteModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M1"}, {Title: "M2"}}})
	require.NoError(t, err)
	mid := c.Modules[0].ID

	require.NoError(t, f.svc.DeleteModule(ctx, c.ID, mid))
	cs, ms, _ := f.all(t)
	_, err = findModule(ms, mid, "")
	require.Error(t, err)
	_, err = findModule(cs[0].Modules, mid, "")
	require.Error(t, err)
	require.Len(t, cs[0].Modules, 1)

	requireNotFound(t, f.svc.DeleteModule(ctx, c.ID, mid), course.LevelModule, "Module not found.")
}

func TestCreateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L1")}}}})
	require.NoError(t, err)
	mid := c.Modules[0].ID

	l, err := f.svc.CreateLesson(ctx, c.ID, mid, lessonIn("L2"))
	require.NoError(t, err)
	require.Equal(t, 2, l.ID)

	cs, ms, ls := f.all(t)
	require.Equal(t, *l, ls[mustFindLesson(t, ls, l.ID)])
	require.Equal(t, *l, ms[0].Lessons[1])
	require.Equal(t, *l, cs[0].Modules[0].Lessons[1])
}

func TestCreateLessonNotFoundWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M"}}})
	require.NoError(t, err)
	other, err := f.svc.CreateCourse(ctx, CourseInput{Title: "O", Description: "D", Modules: []ModuleInput{}})
	require.NoError(t, err)
	before := f.snapshot(t)

	_, err = f.svc.CreateLesson(ctx, c.ID, 99, lessonIn("L"))
	requireNotFound(t, err, course.LevelModule, "Module not found.")
	_, err = f.svc.CreateLesson(ctx, 99, c.Modules[0].ID, lessonIn("L"))
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
	_, err = f.svc.CreateLesson(ctx, other.ID, c.Modules[0].ID, lessonIn("L"))
	requireNotFound(t, err, course.LevelModule, "Module not found in course.")

	require.Equal(t, before, f.snapshot(t))
}

func TestUpdateLessonIdenticalInAllCopiesAndIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L")}}}})
	require.NoError(t, err)
	mid, lid := c.Modules[0].ID, c.Modules[0].Lessons[0].ID

	patch := LessonPatch{
		Title:   strPtr("new title"),
		Topics:  []string{"go", "locks"},
		Content: []course.Content{{Type: course.ContentVideo, Data: "https://example.test/v"}},
	}
	l, err := f.svc.UpdateLesson(ctx, c.ID, mid, lid, patch)
	require.NoError(t, err)
	require.Equal(t, "new title", l.Title)
	require.Equal(t, "L description", l.Description)

	once := f.snapshot(t)
	_, err = f.svc.UpdateLesson(ctx, c.ID, mid, lid, patch)
	require.NoError(t, err)
	require.Equal(t, once, f.snapshot(t))

	cs, ms, ls := f.all(t)
	nested, err := f.svc.GetLesson(ctx, c.ID, mid, lid)
	require.NoError(t, err)
	require.Equal(t, *l, ls[mustFindLesson(t, ls, lid)])
	require.Equal(t, *l, ms[0].Lessons[0])
	require.Equal(t, *l, cs[0].Modules[0].Lessons[0])
	require.Equal(t, *l, *nested)
}

func TestUpdateLessonNotFoundLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{
		{Title: "M1", Lessons: []LessonInput{lessonIn("L1")}},
		{Title: "M2", Lessons: []LessonInput{lessonIn("L2")}},
	}})
	require.NoError(t, err)
	m1, m2 := c.Modules[0].ID, c.Modules[1].ID
	l1 := c.Modules[0].Lessons[0].ID
	before := f.snapshot(t)

	p := LessonPatch{Title: strPtr("x")}
	_, err = f.svc.UpdateLesson(ctx, c.ID, m1, 99, p)
	requireNotFound(t, err, course.LevelLesson, "Lesson not found.")
	_, err = f.svc.UpdateLesson(ctx, c.ID, 99, l1, p)
	requireNotFound(t, err, course.LevelModule, "Module not found.")
	_, err = f.svc.UpdateLesson(ctx, c.ID, m2, l1, p)
	requireNotFound(t, err, course.LevelLesson, "Lesson not found in module.")
	_, err = f.svc.UpdateLesson(ctx, 99, m1, l1, p)
	requireNotFound(t, err, course.LevelCourse, "Course not found.")

	require.Equal(t, before, f.snapshot(t))
}

func TestUpdateLessonDivergedCopiesReportLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L")}}}})
	require.NoError(t, err)
	mid, lid := c.Modules[0].ID, c.Modules[0].Lessons[0].ID

	// drop the course's embedded lesson behind the coordinator's back
	cs, _, _ := f.all(t)
	cs[0].Modules[0].Lessons = nil
	require.NoError(t, f.store.Save(ctx, repository.KindCourses, cs))
	before := f.snapshot(t)

	_, err = f.svc.UpdateLesson(ctx, c.ID, mid, lid, LessonPatch{Title: strPtr("x")})
	requireNotFound(t, err, course.LevelLesson, "Lesson not found in course module.")
	require.Equal(t, before, f.snapshot(t))

	// and the module embedded in the course
	cs[0].Modules = nil
	require.NoError(t, f.store.Save(ctx, repository.KindCourses, cs))
	err = f.svc.DeleteLesson(ctx, c.ID, mid, lid)
	requireNotFound(t, err, course.LevelModule, "Module not found in course.")
}

func TestDeleteLessonRemovesEveryCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L1"), lessonIn("L2")}}}})
	require.NoError(t, err)
	mid, lid := c.Modules[0].ID, c.Modules[0].Lessons[0].ID

	require.NoError(t, f.svc.DeleteLesson(ctx, c.ID, mid, lid))
	cs, ms, ls := f.all(t)
	for _, l := range ls {
		require.NotEqual(t, lid, l.ID)
	}
	for _, m := range ms {
		for _, l := range m.Lessons {
			require.NotEqual(t, lid, l.ID)
		}
	}
	for _, m := range cs[0].Modules {
		for _, l := range m.Lessons {
			require.NotEqual(t, lid, l.ID)
		}
	}
	require.Len(t, ls, 1)

	// the next lesson id is still above every id ever used in the collection
	l, err := f.svc.CreateLesson(ctx, c.ID, mid, lessonIn("L3"))
	require.NoError(t, err)
	require.Equal(t, 3, l.ID)
}

func TestDeleteLessonNotInModuleChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{
		{Title: "M1", Lessons: []LessonInput{lessonIn("L1")}},
		{Title: "M2", Lessons: []LessonInput{lessonIn("L2")}},
	}})
	require.NoError(t, err)
	before := f.snapshot(t)

	err = f.svc.DeleteLesson(ctx, c.ID, c.Modules[1].ID, c.Modules[0].Lessons[0].ID)
	requireNotFound(t, err, course.LevelLesson, "Lesson not found in module.")
	require.Equal(t, before, f.snapshot(t))
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var mods []ModuleInput
	for i := 0; i < 5; i++ {
		mods = append(mods, ModuleInput{Title: "M"})
	}
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: mods})
	require.NoError(t, err)

	list, err := f.svc.ListModules(ctx, c.ID, Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, list.Total)
	require.Len(t, list.Modules, 2)
	require.Equal(t, c.Modules[2].ID, list.Modules[0].ID)

	beyond, err := f.svc.ListModules(ctx, c.ID, Page{Page: 9, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, beyond.Total)
	require.NotNil(t, beyond.Modules)
	require.Empty(t, beyond.Modules)

	huge, err := f.svc.ListModules(ctx, c.ID, Page{Page: math.MaxInt, Limit: MaxLimit})
	require.NoError(t, err)
	require.Equal(t, 5, huge.Total)
	require.NotNil(t, huge.Modules)
	require.Empty(t, huge.Modules)

	courses, err := f.svc.ListCourses(ctx, Page{})
	require.NoError(t, err)
	require.Equal(t, DefaultPage, courses.Page)
	require.Equal(t, DefaultLimit, courses.Limit)
	require.Equal(t, 1, courses.Total)

	lessons, err := f.svc.ListLessons(ctx, c.ID, c.Modules[0].ID, Page{Page: 3})
	require.NoError(t, err)
	require.Equal(t, 0, lessons.Total)
	require.Empty(t, lessons.Lessons)

	_, err = f.svc.ListLessons(ctx, c.ID, 99, Page{})
	requireNotFound(t, err, course.LevelModule, "Module not found.")
	_, err = f.svc.ListModules(ctx, 99, Page{})
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
}

func TestGetLessonLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L")}}}})
	require.NoError(t, err)

	_, err = f.svc.GetLesson(ctx, 99, 99, 99)
	requireNotFound(t, err, course.LevelCourse, "Course not found.")
	_, err = f.svc.GetLesson(ctx, c.ID, 99, 99)
	requireNotFound(t, err, course.LevelModule, "Module not found.")
	_, err = f.svc.GetLesson(ctx, c.ID, c.Modules[0].ID, 99)
	requireNotFound(t, err, course.LevelLesson, "Lesson not found.")
}

func TestStorageErrorIsNotNotFound(t *testing.T) {
	backend := repository.NewMemoryBackend()
	require.NoError(t, backend.Write(context.Background(), repository.KindCourses, []byte("[{broken")))
	svc := NewService(repository.NewStore(backend, repository.NewMemoryLocker(), 0))

	_, err := svc.GetCourse(context.Background(), 1)
	require.Error(t, err)
	require.False(t, course.IsNotFound(err))
	require.True(t, repository.IsStorageError(err))

	_, err = svc.UpdateCourse(context.Background(), 1, CoursePatch{Title: strPtr("x")})
	require.True(t, repository.IsStorageError(err))
}

func TestConcurrentLessonUpdatesKeepBothFields(t *testing.T) {
	dir := t.TempDir()
	backend, err := repository.NewFileBackend(dir)
	require.NoError(t, err)
	locker, err := repository.NewFileLocker(dir)
	require.NoError(t, err)
	svc := NewService(repository.NewStore(backend, locker, 0))
	ctx := context.Background()

	c, err := svc.CreateCourse(ctx, CourseInput{Title: "T", Description: "D", Modules: []ModuleInput{{Title: "M", Lessons: []LessonInput{lessonIn("L")}}}})
	require.NoError(t, err)
	mid, lid := c.Modules[0].ID, c.Modules[0].Lessons[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateLesson(ctx, c.ID, mid, lid, LessonPatch{Title: strPtr("A")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.UpdateLesson(ctx, c.ID, mid, lid, LessonPatch{Description: strPtr("B")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	l, err := svc.GetLesson(ctx, c.ID, mid, lid)
	require.NoError(t, err)
	require.Equal(t, "A", l.Title)
	require.Equal(t, "B", l.Description)

	var ls []course.Lesson
	require.NoError(t, repository.NewStore(backend, locker, 0).Load(ctx, repository.KindLessons, &ls))
	require.Equal(t, *l, ls[0])
}
