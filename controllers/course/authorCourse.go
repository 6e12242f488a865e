package controllers

import (
	"courseforge/database"
	"courseforge/middleware"
	"courseforge/models"
	courseModels "courseforge/models/course"
	"courseforge/utils"

	"github.com/gofiber/fiber/v2"
)

// loadOwnedCourse fetches a course and verifies the caller owns it.
// Admins may edit any course.
func loadOwnedCourse(c *fiber.Ctx, userID uint, courseID int) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if course.AuthorID != userID && user.Role != "ADMIN" {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	return &course, nil
}

// AuthorCreateCourse creates a new course owned by the caller
func AuthorCreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		AuthorID:    userID,
		IsPublic:    reqData.IsPublic,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AuthorUpdateCourse updates an existing course
func AuthorUpdateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course, err := loadOwnedCourse(c, userID, courseID)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsPublic    *bool  `json:"is_public"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.IsPublic != nil {
		course.IsPublic = *reqData.IsPublic
	}

	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AuthorDeleteCourse soft deletes a course and all its sections and lessons
func AuthorDeleteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course, err := loadOwnedCourse(c, userID, courseID)
	if course == nil {
		return err
	}

	// Cascade the soft delete to owned sections and lessons
	tx := database.Database.Db.Begin()
	if err := tx.Model(course).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	if err := tx.Model(&courseModels.Section{}).Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course sections!", nil)
	}
	if err := tx.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course lessons!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AuthorUploadThumbnail stores a thumbnail image for a course
func AuthorUploadThumbnail(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	course, err := loadOwnedCourse(c, userID, courseID)
	if course == nil {
		return err
	}

	file, ferr := c.FormFile("thumbnail")
	if ferr != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}

	path, serr := utils.SaveUploadedFile(file, "./public/uploads")
	if serr != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save thumbnail!", nil)
	}

	course.ThumbnailURL = utils.GetFileURL(path)
	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", fiber.Map{
		"thumbnail_url": course.ThumbnailURL,
	})
}

// AuthorCreateSection creates a new section in a course
func AuthorCreateSection(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	if course, err := loadOwnedCourse(c, userID, courseID); course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title    string `json:"title"`
		Position int    `json:"position"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next position if not provided
	position := reqData.Position
	if position == 0 {
		var maxPosition int
		database.Database.Db.Model(&courseModels.Section{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)
		position = maxPosition + 1
	}

	section := courseModels.Section{
		CourseID: uint(courseID),
		Title:    reqData.Title,
		Position: position,
	}

	if err := database.Database.Db.Create(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// AuthorCreateLesson creates a new lesson in a course, optionally inside
// a section. Lesson positions are unique within their section.
func AuthorCreateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	if course, err := loadOwnedCourse(c, userID, courseID); course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		SectionID *uint  `json:"section_id"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		Position  int    `json:"position"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// A referenced section must belong to this course
	if reqData.SectionID != nil {
		var section courseModels.Section
		if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", *reqData.SectionID, courseID, false).First(&section).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found in this course!", nil)
		}
	}

	// Position is unique within the containing section
	sectionScope := database.Database.Db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ?", courseID, false)
	if reqData.SectionID != nil {
		sectionScope = sectionScope.Where("section_id = ?", *reqData.SectionID)
	} else {
		sectionScope = sectionScope.Where("section_id IS NULL")
	}

	position := reqData.Position
	if position == 0 {
		var maxPosition int
		sectionScope.Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)
		position = maxPosition + 1
	} else {
		var clash int64
		sectionScope.Where("position = ?", position).Count(&clash)
		if clash > 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"position": "Position already used in this section!",
			})
		}
	}

	lesson := courseModels.Lesson{
		CourseID:  uint(courseID),
		SectionID: reqData.SectionID,
		Title:     reqData.Title,
		Body:      reqData.Body,
		Position:  position,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AuthorUpdateLesson updates an existing lesson
func AuthorUpdateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	if course, err := loadOwnedCourse(c, userID, courseID); course == nil {
		return err
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Body != "" {
		lesson.Body = reqData.Body
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AuthorDeleteLesson soft deletes a lesson
func AuthorDeleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	if course, err := loadOwnedCourse(c, userID, courseID); course == nil {
		return err
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := database.Database.Db.Model(&lesson).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
