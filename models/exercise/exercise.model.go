package exercise

import "gorm.io/gorm"

// Difficulty enum values
const (
	DifficultyBeginner     = "BEGINNER"
	DifficultyIntermediate = "INTERMEDIATE"
	DifficultyAdvanced     = "ADVANCED"
)

// Exercise is a code exercise with starter source and graded test cases
type Exercise struct {
	gorm.Model
	AuthorID    uint   `json:"author_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
	Language    string `json:"language" gorm:"size:20;default:'GO'"`
	Difficulty  string `json:"difficulty" gorm:"size:20;default:'BEGINNER'"`
	StarterCode string `json:"starter_code" gorm:"type:text"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`

	TestCases []TestCase `json:"test_cases,omitempty" gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE"`
}

// TestCase grades an exercise submission by strict stdout comparison
type TestCase struct {
	gorm.Model
	ExerciseID     uint   `json:"exercise_id" gorm:"index;not null"`
	Description    string `json:"description"`
	Input          string `json:"input" gorm:"type:text"` // seeded into stdin, may be empty
	ExpectedOutput string `json:"expected_output" gorm:"type:text"`
	Position       int    `json:"position" gorm:"default:0"`
	IsDeleted      bool   `gorm:"default:false"`
}

// Solution is a learner's submitted source for an exercise
type Solution struct {
	gorm.Model
	ExerciseID  uint   `json:"exercise_id" gorm:"index;not null"`
	UserID      uint   `json:"user_id" gorm:"index;not null"`
	Source      string `json:"source" gorm:"type:text"`
	PassedCases int    `json:"passed_cases" gorm:"default:0"`
	TotalCases  int    `json:"total_cases" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}
