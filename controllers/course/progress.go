package controllers

import (
	"courseforge/database"
	"courseforge/middleware"
	"courseforge/models"
	courseModels "courseforge/models/course"
	"courseforge/services/tracker"
	"courseforge/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// MarkLessonComplete records a lesson completion for the caller and returns
// the updated progress. Re-completing a lesson reports success unchanged.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated IDs
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	summary, err := tracker.MarkLessonComplete(database.Database.Db, userID, uint(courseID), uint(lessonID))
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		case errors.Is(err, tracker.ErrCourseNotVisible):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This course is private!", nil)
		case errors.Is(err, tracker.ErrLessonNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		case errors.Is(err, tracker.ErrLessonNotInCourse):
			return middleware.ValidationErrorResponse(c, map[string]string{
				"lesson_id": "Lesson does not belong to this course!",
			})
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
		}
	}

	if summary.AlreadyComplete {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson already marked as completed.", summary)
	}

	if summary.Progress >= 100 {
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err == nil {
			utils.SendCourseCompletedEmail(user.Email, user.Name, course.Title)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", summary)
}

// GetCourseProgress returns the caller's per-lesson completion flags plus
// the aggregate progress for a course
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	view, err := tracker.CourseView(database.Database.Db, userID, uint(courseID))
	if err != nil {
		if errors.Is(err, tracker.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		if errors.Is(err, tracker.ErrCourseNotVisible) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This course is private!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", view)
}
