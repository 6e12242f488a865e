package userRoutes

import (
	courseControllers "courseforge/controllers/course"
	"courseforge/middleware"
	courseValidators "courseforge/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/enrollments", middleware.JWTMiddleware, courseValidators.GetUserEnrollments(), courseControllers.GetEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, courseControllers.GetUserCertificates)
}
