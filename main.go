package main

import (
	"courseforge/config"
	exerciseController "courseforge/controllers/exercise"
	"courseforge/database"
	authRoutes "courseforge/routers/authRoutes"
	courseRoutes "courseforge/routers/courseRoutes"
	exerciseRoutes "courseforge/routers/exerciseRoutes"
	subscriptionRoutes "courseforge/routers/subscriptionRoutes"
	userRoutes "courseforge/routers/userRoutes"
	"courseforge/services/sandbox"
	"courseforge/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Interpreter runtime for code exercises. Warmed up in the
	// background so a slow start never delays serving; until it is
	// ready the run and submit endpoints answer 503.
	runtime := sandbox.New(time.Duration(config.AppConfig.SandboxTimeoutSeconds) * time.Second)
	go func() {
		if err := runtime.Init(); err != nil {
			log.Printf("[SANDBOX] Runtime init failed: %v", err)
		}
	}()
	exerciseController.SetRuntime(runtime)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAuthorCourseRoutes(app)
	exerciseRoutes.SetupExerciseRoutes(app)
	subscriptionRoutes.SetupSubscriptionRoutes(app)

	utils.InitializeSubscriptionScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
