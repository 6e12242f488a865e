package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description" gorm:"type:text"`
	AuthorID     uint   `json:"author_id" gorm:"index;not null"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublic     bool   `json:"is_public" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`

	// Sections and lessons are owned exclusively by the course
	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Lessons  []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// Section groups ordered lessons within a course
type Section struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Title     string `json:"title"`
	Position  int    `json:"position" gorm:"default:0"` // Section order in course
	IsDeleted bool   `gorm:"default:false"`
}

// Lesson is a single unit of course content. Position is unique within
// the containing section, or within the course's unsectioned pool.
type Lesson struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	SectionID *uint  `json:"section_id" gorm:"index"` // nil for unsectioned lessons
	Title     string `json:"title"`
	Body      string `json:"body" gorm:"type:text"`
	Position  int    `json:"position" gorm:"default:0"` // Lesson order within section
	IsDeleted bool   `gorm:"default:false"`
}
