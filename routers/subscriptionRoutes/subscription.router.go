package subscriptionRoutes

import (
	subscriptionControllers "courseforge/controllers/subscription"
	"courseforge/middleware"
	subscriptionValidators "courseforge/validators/subscription"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(app *fiber.App) {
	subscriptionGroup := app.Group("/subscription")

	subscriptionGroup.Post("/subscribe", middleware.JWTMiddleware, subscriptionValidators.Subscribe(), subscriptionControllers.Subscribe)
	subscriptionGroup.Get("/my", middleware.JWTMiddleware, subscriptionControllers.GetMySubscription)

	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	adminGroup.Get("/subscriptions", subscriptionControllers.AdminListSubscriptions)
}
