package tracker

import (
	"errors"
	"math"
	"time"

	courseModels "courseforge/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCourseNotFound is returned when the course is absent or deleted
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseNotVisible rejects private courses for anyone but their author
	ErrCourseNotVisible = errors.New("course is not accessible")
	// ErrLessonNotFound is returned when the lesson is absent or deleted
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrLessonNotInCourse rejects cross-course lesson IDs before any mutation
	ErrLessonNotInCourse = errors.New("lesson does not belong to this course")
	// ErrUpdateConflict is returned only when the optimistic update loses
	// the race more times than maxRetries allows
	ErrUpdateConflict = errors.New("progress update conflict")
)

// maxRetries bounds the re-read/re-apply loop on concurrent completions
const maxRetries = 5

// Summary is the authoritative result of a completion request
type Summary struct {
	Progress         int  `json:"progress"`
	CompletedLessons int  `json:"completedLessons"`
	AlreadyComplete  bool `json:"alreadyComplete"`
}

// LessonStatus is one lesson row in a course view
type LessonStatus struct {
	ID        uint   `json:"id"`
	SectionID *uint  `json:"section_id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	Completed bool   `json:"completed"`
}

// View assembles per-lesson completion flags with the aggregate progress
type View struct {
	Lessons          []LessonStatus `json:"lessons"`
	Progress         int            `json:"progress"`
	CompletedLessons int            `json:"completedLessons"`
}

// Enroll creates an enrollment for (user, course) or returns the existing
// one unchanged. The unique index on (user_id, course_id) is the backstop
// against duplicate-enrollment races: a conflicting insert is a no-op and
// the surviving row is re-read.
func Enroll(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublic && course.AuthorID != userID {
		return nil, ErrCourseNotVisible
	}

	var existing courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   "ENROLLED",
	}
	if err := enrollment.SetCompleted(nil); err != nil {
		return nil, err
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the insert race, fetch the winner
		if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
			return nil, err
		}
	}

	return &enrollment, nil
}

// MarkLessonComplete records a lesson as completed for (user, course) and
// recomputes the derived progress. Re-completing an already-completed
// lesson is an idempotent no-op reported via Summary.AlreadyComplete.
// The read-modify-write of the completed list is guarded by a
// compare-and-swap on the stored counter; a lost race is re-applied from
// a fresh read rather than surfaced to the caller.
func MarkLessonComplete(db *gorm.DB, userID, courseID, lessonID uint) (*Summary, error) {
	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, ErrLessonNotInCourse
	}

	// Auto-enroll on first completion; validates the course as well
	enrollment, err := Enroll(db, userID, courseID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Re-read the row a concurrent writer just changed
			if err := db.Where("id = ?", enrollment.ID).First(enrollment).Error; err != nil {
				return nil, err
			}
		}

		set, ordered, err := enrollment.CompletedSet()
		if err != nil {
			return nil, err
		}
		if set[lessonID] {
			return &Summary{
				Progress:         enrollment.Progress,
				CompletedLessons: enrollment.CompletedLessons,
				AlreadyComplete:  true,
			}, nil
		}
		ordered = append(ordered, lessonID)

		// Total lesson count is taken live at completion time, not cached
		var totalLessons int64
		if err := db.Model(&courseModels.Lesson{}).
			Where("course_id = ? AND is_deleted = ?", courseID, false).
			Count(&totalLessons).Error; err != nil {
			return nil, err
		}

		progress := 0
		if totalLessons > 0 {
			progress = int(math.Round(100 * float64(len(ordered)) / float64(totalLessons)))
		}

		updated := *enrollment
		if err := updated.SetCompleted(ordered); err != nil {
			return nil, err
		}
		updated.Progress = progress

		updates := map[string]interface{}{
			"completed_lesson_ids": updated.CompletedLessonIDs,
			"completed_lessons":    updated.CompletedLessons,
			"progress":             updated.Progress,
		}
		if progress >= 100 {
			now := time.Now()
			updates["status"] = "COMPLETED"
			updates["completed_at"] = &now
		} else if progress > 0 {
			updates["status"] = "IN_PROGRESS"
		}

		// The WHERE on completed_lessons is the compare-and-swap: a
		// concurrent writer moved the counter, so retry from a fresh read
		res := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND completed_lessons = ?", enrollment.ID, enrollment.CompletedLessons).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return &Summary{
				Progress:         updated.Progress,
				CompletedLessons: updated.CompletedLessons,
			}, nil
		}
	}

	return nil, ErrUpdateConflict
}

// CourseView assembles each lesson's completion flag for the caller plus
// the aggregate progress. Read-only; callers that are not enrolled get
// all-false flags and zero progress.
func CourseView(db *gorm.DB, userID, courseID uint) (*View, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublic && course.AuthorID != userID {
		return nil, ErrCourseNotVisible
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("section_id asc, position asc").
		Find(&lessons).Error; err != nil {
		return nil, err
	}

	view := &View{Lessons: make([]LessonStatus, 0, len(lessons))}

	var enrollment courseModels.Enrollment
	completed := map[uint]bool{}
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error
	if err == nil {
		set, _, derr := enrollment.CompletedSet()
		if derr != nil {
			return nil, derr
		}
		completed = set
		view.Progress = enrollment.Progress
		view.CompletedLessons = enrollment.CompletedLessons
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for _, lesson := range lessons {
		view.Lessons = append(view.Lessons, LessonStatus{
			ID:        lesson.ID,
			SectionID: lesson.SectionID,
			Title:     lesson.Title,
			Position:  lesson.Position,
			Completed: completed[lesson.ID],
		})
	}

	return view, nil
}
