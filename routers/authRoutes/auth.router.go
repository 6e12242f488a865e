package authRoutes

import (
	authControllers "courseforge/controllers/auth"
	"courseforge/middleware"
	authValidators "courseforge/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Patch("/verify/email", authControllers.VerifyEmail)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/oauth/login", authValidators.OAuthLogin(), authControllers.OAuthLogin)
	authGroup.Get("/login/history", authValidators.LoginHistoryList(), middleware.JWTMiddleware, authControllers.LoginHistoryList)
}
