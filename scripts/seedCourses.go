package main

import (
	"courseforge/config"
	"courseforge/database"
	courseModels "courseforge/models/course"
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"
)

// Seeds courses and lessons from a CSV export. Expected headers:
// courseTitle, courseDescription, authorId, isPublic, lessonTitle,
// lessonBody, lessonPosition. Rows sharing a courseTitle land in the
// same course.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	file, err := os.Open("courses.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(h)] = i
	}

	coursesCreated := 0
	lessonsCreated := 0
	skipped := 0

	// Course cache so repeated rows reuse the same course
	courseIDs := make(map[string]uint)

	for i, row := range records[1:] {
		courseTitle := getField(row, headerIndex, "courseTitle")
		lessonTitle := getField(row, headerIndex, "lessonTitle")

		if courseTitle == "" || lessonTitle == "" {
			skipped++
			continue
		}

		courseID, ok := courseIDs[courseTitle]
		if !ok {
			var existing courseModels.Course
			result := database.Database.Db.Where("title = ? AND is_deleted = ?", courseTitle, false).First(&existing)

			if result.Error != nil {
				course := courseModels.Course{
					Title:       courseTitle,
					Description: getField(row, headerIndex, "courseDescription"),
					AuthorID:    uint(parseInt(getField(row, headerIndex, "authorId"))),
					IsPublic:    strings.EqualFold(getField(row, headerIndex, "isPublic"), "true"),
				}
				if err := database.Database.Db.Create(&course).Error; err != nil {
					log.Printf("Error creating course %q (row %d): %v", courseTitle, i+1, err)
					skipped++
					continue
				}
				courseID = course.ID
				coursesCreated++
			} else {
				courseID = existing.ID
			}
			courseIDs[courseTitle] = courseID
		}

		position := parseInt(getField(row, headerIndex, "lessonPosition"))
		if position <= 0 {
			var count int64
			database.Database.Db.Model(&courseModels.Lesson{}).
				Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&count)
			position = int(count) + 1
		}

		lesson := courseModels.Lesson{
			CourseID: courseID,
			Title:    lessonTitle,
			Body:     getField(row, headerIndex, "lessonBody"),
			Position: position,
		}
		if err := database.Database.Db.Create(&lesson).Error; err != nil {
			log.Printf("Error creating lesson %q (row %d): %v", lessonTitle, i+1, err)
			skipped++
			continue
		}
		lessonsCreated++
	}

	log.Printf("=== Seed Complete ===")
	log.Printf("Courses created: %d", coursesCreated)
	log.Printf("Lessons created: %d", lessonsCreated)
	log.Printf("Skipped: %d", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
