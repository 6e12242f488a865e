package courseRoutes

import (
	controllers "courseforge/controllers/course"
	"courseforge/middleware"
	validators "courseforge/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthorCourseRoutes sets up all author course management routes
func SetupAuthorCourseRoutes(app *fiber.App) {
	authorGroup := app.Group("/author/course", middleware.JWTMiddleware, middleware.RequireRole("AUTHOR", "ADMIN"))

	// Course management
	authorGroup.Post("/", validators.CreateCourse(), controllers.AuthorCreateCourse)
	authorGroup.Patch("/:id", validators.CourseID(), validators.UpdateCourse(), controllers.AuthorUpdateCourse)
	authorGroup.Delete("/:id", validators.CourseID(), controllers.AuthorDeleteCourse)
	authorGroup.Post("/:id/thumbnail", validators.CourseID(), controllers.AuthorUploadThumbnail)

	// Section management
	authorGroup.Post("/:id/section", validators.CourseID(), validators.CreateSection(), controllers.AuthorCreateSection)

	// Lesson management
	authorGroup.Post("/:id/lesson", validators.CourseID(), validators.CreateLesson(), controllers.AuthorCreateLesson)
	authorGroup.Patch("/:id/lesson/:lessonId", validators.CourseID(), validators.LessonID(), validators.UpdateLesson(), controllers.AuthorUpdateLesson)
	authorGroup.Delete("/:id/lesson/:lessonId", validators.CourseID(), validators.LessonID(), controllers.AuthorDeleteLesson)
}
