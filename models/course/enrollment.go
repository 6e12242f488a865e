package course

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment tracks a user's enrollment in a course with progress.
// At most one row may exist per (user, course) pair.
type Enrollment struct {
	gorm.Model
	UserID             uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID           uint           `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	Status             string         `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Progress           int            `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	CompletedLessons   int            `json:"completed_lessons" gorm:"default:0"`
	CompletedLessonIDs datatypes.JSON `json:"completed_lesson_ids"` // ordered JSON array of lesson IDs
	CompletedAt        *time.Time     `json:"completed_at"`
	IsDeleted          bool           `gorm:"default:false"`
}

// CompletedSet decodes the stored lesson ID list into a set plus the
// original insertion order. The storage layer does not enforce
// uniqueness, so duplicates are dropped here.
func (e *Enrollment) CompletedSet() (map[uint]bool, []uint, error) {
	set := make(map[uint]bool)
	var ordered []uint
	if len(e.CompletedLessonIDs) == 0 {
		return set, ordered, nil
	}

	var raw []uint
	if err := json.Unmarshal(e.CompletedLessonIDs, &raw); err != nil {
		return nil, nil, err
	}
	for _, id := range raw {
		if set[id] {
			continue
		}
		set[id] = true
		ordered = append(ordered, id)
	}
	return set, ordered, nil
}

// SetCompleted serializes the ordered lesson ID list back into the row.
func (e *Enrollment) SetCompleted(ordered []uint) error {
	buf, err := json.Marshal(ordered)
	if err != nil {
		return err
	}
	e.CompletedLessonIDs = datatypes.JSON(buf)
	e.CompletedLessons = len(ordered)
	return nil
}
