package tracker

import (
	"fmt"
	"sync"
	"testing"

	courseModels "courseforge/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the shared in-memory database alive and
	// serializes writers the way the production pool's row locks would
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Section{},
		&courseModels.Lesson{},
		&courseModels.Enrollment{},
	))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lessonCount int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()

	course := courseModels.Course{Title: "Go Basics", AuthorID: 1, IsPublic: true}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]courseModels.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := courseModels.Lesson{
			CourseID: course.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Position: i + 1,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func TestEnrollCreatesSingleRow(t *testing.T) {
	db := newTestDB(t)
	course, _ := seedCourse(t, db, 2)

	first, err := Enroll(db, 7, course.ID)
	require.NoError(t, err)
	require.Equal(t, "ENROLLED", first.Status)
	require.Equal(t, 0, first.Progress)

	second, err := Enroll(db, 7, course.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", 7, course.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEnrollUnknownCourse(t *testing.T) {
	db := newTestDB(t)

	_, err := Enroll(db, 7, 999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollPrivateCourse(t *testing.T) {
	db := newTestDB(t)
	private := courseModels.Course{Title: "Draft Course", AuthorID: 1, IsPublic: false}
	require.NoError(t, db.Create(&private).Error)
	lesson := courseModels.Lesson{CourseID: private.ID, Title: "Hidden", Position: 1}
	require.NoError(t, db.Create(&lesson).Error)

	// A stranger cannot enroll, complete lessons or see progress
	_, err := Enroll(db, 99, private.ID)
	require.ErrorIs(t, err, ErrCourseNotVisible)

	_, err = MarkLessonComplete(db, 99, private.ID, lesson.ID)
	require.ErrorIs(t, err, ErrCourseNotVisible)

	_, err = CourseView(db, 99, private.ID)
	require.ErrorIs(t, err, ErrCourseNotVisible)

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("course_id = ?", private.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// The author still can
	enrollment, err := Enroll(db, 1, private.ID)
	require.NoError(t, err)
	require.Equal(t, uint(1), enrollment.UserID)
}

func TestMarkLessonCompleteProgress(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 3)

	summary, err := MarkLessonComplete(db, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)
	require.Equal(t, 33, summary.Progress)
	require.Equal(t, 1, summary.CompletedLessons)
	require.False(t, summary.AlreadyComplete)

	summary, err = MarkLessonComplete(db, 7, course.ID, lessons[1].ID)
	require.NoError(t, err)
	require.Equal(t, 67, summary.Progress)
	require.Equal(t, 2, summary.CompletedLessons)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 7, course.ID).First(&enrollment).Error)
	require.Equal(t, "IN_PROGRESS", enrollment.Status)
	require.Nil(t, enrollment.CompletedAt)
}

func TestMarkLessonCompleteFinishesCourse(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 2)

	for _, lesson := range lessons {
		_, err := MarkLessonComplete(db, 7, course.ID, lesson.ID)
		require.NoError(t, err)
	}

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 7, course.ID).First(&enrollment).Error)
	require.Equal(t, 100, enrollment.Progress)
	require.Equal(t, len(lessons), enrollment.CompletedLessons)
	require.Equal(t, "COMPLETED", enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
}

func TestMarkLessonCompleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 3)

	first, err := MarkLessonComplete(db, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)

	again, err := MarkLessonComplete(db, 7, course.ID, lessons[0].ID)
	require.NoError(t, err)
	require.True(t, again.AlreadyComplete)
	require.Equal(t, first.Progress, again.Progress)
	require.Equal(t, first.CompletedLessons, again.CompletedLessons)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 7, course.ID).First(&enrollment).Error)
	_, ordered, err := enrollment.CompletedSet()
	require.NoError(t, err)
	require.Equal(t, []uint{lessons[0].ID}, ordered)
}

func TestMarkLessonCompleteAutoEnrolls(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 4)

	_, err := MarkLessonComplete(db, 9, course.ID, lessons[0].ID)
	require.NoError(t, err)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 9, course.ID).First(&enrollment).Error)
	require.Equal(t, 25, enrollment.Progress)
}

func TestMarkLessonCompleteRejectsForeignLesson(t *testing.T) {
	db := newTestDB(t)
	course, _ := seedCourse(t, db, 2)

	other := courseModels.Course{Title: "Other Course", AuthorID: 1}
	require.NoError(t, db.Create(&other).Error)
	foreign := courseModels.Lesson{CourseID: other.ID, Title: "Foreign", Position: 1}
	require.NoError(t, db.Create(&foreign).Error)

	_, err := MarkLessonComplete(db, 7, course.ID, foreign.ID)
	require.ErrorIs(t, err, ErrLessonNotInCourse)

	// The rejection happens before any write
	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("user_id = ?", 7).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestMarkLessonCompleteUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	course, _ := seedCourse(t, db, 1)

	_, err := MarkLessonComplete(db, 7, course.ID, 999)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

func TestMarkLessonCompleteConcurrent(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 2)

	_, err := Enroll(db, 7, course.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = MarkLessonComplete(db, 7, course.ID, lessons[i].ID)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Neither completion may be lost to the other
	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 7, course.ID).First(&enrollment).Error)
	require.Equal(t, 2, enrollment.CompletedLessons)
	require.Equal(t, 100, enrollment.Progress)

	set, _, err := enrollment.CompletedSet()
	require.NoError(t, err)
	require.True(t, set[lessons[0].ID])
	require.True(t, set[lessons[1].ID])
}

func TestCourseViewUnenrolled(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 3)

	view, err := CourseView(db, 42, course.ID)
	require.NoError(t, err)
	require.Len(t, view.Lessons, len(lessons))
	require.Equal(t, 0, view.Progress)
	for _, ls := range view.Lessons {
		require.False(t, ls.Completed)
	}
}

func TestCourseViewFlagsCompleted(t *testing.T) {
	db := newTestDB(t)
	course, lessons := seedCourse(t, db, 3)

	_, err := MarkLessonComplete(db, 7, course.ID, lessons[1].ID)
	require.NoError(t, err)

	view, err := CourseView(db, 7, course.ID)
	require.NoError(t, err)
	require.Equal(t, 33, view.Progress)
	require.Equal(t, 1, view.CompletedLessons)

	flagged := 0
	for _, ls := range view.Lessons {
		if ls.Completed {
			flagged++
			require.Equal(t, lessons[1].ID, ls.ID)
		}
	}
	require.Equal(t, 1, flagged)
}

func TestCourseViewOrdersByPosition(t *testing.T) {
	db := newTestDB(t)
	course := courseModels.Course{Title: "Ordered", AuthorID: 1, IsPublic: true}
	require.NoError(t, db.Create(&course).Error)

	// Inserted out of order on purpose
	for _, pos := range []int{3, 1, 2} {
		lesson := courseModels.Lesson{CourseID: course.ID, Title: fmt.Sprintf("L%d", pos), Position: pos}
		require.NoError(t, db.Create(&lesson).Error)
	}

	view, err := CourseView(db, 7, course.ID)
	require.NoError(t, err)
	require.Len(t, view.Lessons, 3)
	for i, ls := range view.Lessons {
		require.Equal(t, i+1, ls.Position)
	}
}
