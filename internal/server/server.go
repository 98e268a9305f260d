package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"

	"github.com/pjamessteven/social-project-sub002/internal/controllers"
	"github.com/pjamessteven/social-project-sub002/internal/middlewares"
)

type HTTPServerDependencies struct {
	ChatController         *controllers.ChatController
	ConversationController *controllers.ConversationController
	RedisClient            *redis.Client
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "social-project-api",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "social-project-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	api.Use(middlewares.IPBanMiddleware(deps.RedisClient))

	api.Post("/chat", deps.ChatController.Chat)
	api.Post("/research", deps.ChatController.Research)

	api.Get("/research/conversations", deps.ConversationController.List)
	api.Get("/research/conversations/:uuid", deps.ConversationController.Get)

	return router
}
