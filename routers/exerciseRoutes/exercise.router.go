package exerciseRoutes

import (
	exerciseControllers "courseforge/controllers/exercise"
	"courseforge/middleware"
	exerciseValidators "courseforge/validators/exercise"

	"github.com/gofiber/fiber/v2"
)

func SetupExerciseRoutes(app *fiber.App) {
	exerciseGroup := app.Group("/exercise")

	// Browsing
	exerciseGroup.Get("/list", middleware.JWTMiddleware, exerciseControllers.GetAllExercises)
	exerciseGroup.Get("/:id", middleware.JWTMiddleware, exerciseValidators.ExerciseID(), exerciseControllers.GetExerciseDetails)

	// Execution and grading
	exerciseGroup.Post("/:id/run", middleware.JWTMiddleware, exerciseValidators.ExerciseID(), exerciseValidators.RunCode(), exerciseControllers.RunExerciseCode)
	exerciseGroup.Post("/:id/submit", middleware.JWTMiddleware, exerciseValidators.ExerciseID(), exerciseValidators.RunCode(), exerciseControllers.SubmitSolution)

	// Authoring
	authorGroup := app.Group("/author/exercise", middleware.JWTMiddleware, middleware.RequireRole("AUTHOR", "ADMIN"))
	authorGroup.Post("/", exerciseValidators.CreateExercise(), exerciseControllers.AuthorCreateExercise)
	authorGroup.Patch("/:id", exerciseValidators.ExerciseID(), exerciseValidators.UpdateExercise(), exerciseControllers.AuthorUpdateExercise)
	authorGroup.Delete("/:id", exerciseValidators.ExerciseID(), exerciseControllers.AuthorDeleteExercise)
}
