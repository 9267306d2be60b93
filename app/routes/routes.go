// app/routes/routes.go
package routes

import (
	"time"

	"talkmatch/app/controllers"
	"talkmatch/app/middlewares"
	"talkmatch/config"
	"talkmatch/database"
	"talkmatch/redis"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, matchRequests *controllers.MatchRequestController, conversations *controllers.ConversationController) {
	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		health := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  map[string]string{},
		}

		// Check Cassandra connection
		if err := database.HealthCheck(); err != nil {
			health["services"].(map[string]string)["cassandra"] = "error: " + err.Error()
		} else {
			health["services"].(map[string]string)["cassandra"] = "ok"
		}

		// Check MongoDB connection
		if err := database.MongoHealthCheck(); err != nil {
			health["services"].(map[string]string)["mongodb"] = "error: " + err.Error()
		} else {
			health["services"].(map[string]string)["mongodb"] = "ok"
		}

		// Check Redis connection
		redisService := redis.NewService()
		if _, err := redisService.GetClient().Ping(redisService.GetContext()).Result(); err != nil {
			health["services"].(map[string]string)["redis"] = "error: " + err.Error()
		} else {
			health["services"].(map[string]string)["redis"] = "ok"
		}

		return c.JSON(health)
	})

	// API version endpoint
	app.Get("/api/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":   "1.0.0",
			"name":      config.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Match request endpoints, all behind JWT auth
	api := app.Group("/api", middlewares.JWTMiddleware())

	api.Post("/match-requests", matchRequests.Submit)
	api.Get("/match-requests/active", matchRequests.GetActive)
	api.Get("/match-requests/stats", matchRequests.Stats)
	api.Delete("/match-requests/:id", matchRequests.Cancel)

	api.Get("/conversations/:id", conversations.Get)
}
