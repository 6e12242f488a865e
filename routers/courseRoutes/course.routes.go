package courseRoutes

import (
	controllers "courseforge/controllers/course"
	"courseforge/middleware"
	validators "courseforge/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Lesson completion and progress
	courseGroup.Post("/:id/lesson/:lessonId/complete", middleware.JWTMiddleware, validators.CourseID(), validators.LessonID(), controllers.MarkLessonComplete)
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseProgress)

	// Certificate request
	courseGroup.Post("/:id/certificate/request", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)
}
