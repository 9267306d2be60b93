// main.go
package main

import (
	"fmt"
	"log"
	"time"

	"talkmatch/app/controllers"
	"talkmatch/app/routes"
	"talkmatch/app/services"
	"talkmatch/app/socket"
	"talkmatch/config"
	"talkmatch/database"
	"talkmatch/redis"

	"github.com/gofiber/fiber/v2"
)

func main() {
	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ServerHeader:  "Fiber",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			ctx.Status(code)
			return ctx.JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Initialize databases first
	fmt.Println("🔌 Initializing database connections...")
	if err := database.InitDB(); err != nil {
		log.Fatalf("❌ Failed to connect to the databases: %v", err)
	}
	fmt.Println("✅ Databases initialized successfully")

	// Initialize Redis-backed connection registry
	fmt.Println("🔧 Initializing Redis service...")
	redisService := redis.NewService()
	fmt.Println("✅ Redis service initialized")

	// Wire the matching engine
	fmt.Println("🔧 Initializing matching services...")
	store := services.NewCassandraMatchRequestStore(database.CassandraSession)
	conversations := services.NewCassandraConversationStore(database.CassandraSession)
	users := services.NewUserService(database.UsersCollection(), database.BlocksCollection())
	matchmaking := services.NewMatchmakingService(store, conversations, users, redisService)
	requests := services.NewRequestService(store, users, matchmaking)
	sessions := services.NewSessionService(redisService)
	fmt.Println("✅ Matching services initialized")

	// Initialize Socket.IO handler for the realtime retry channel
	fmt.Println("🔌 Initializing Socket.IO handler...")
	socketHandler := socket.NewSocketHandler(sessions, requests, matchmaking)
	fmt.Println("✅ Socket.IO handler initialized")

	// Setup Socket.IO routes (this should be before regular routes)
	socketHandler.SetupSocketRoutes(app)

	// HTTP controllers
	matchRequestController := controllers.NewMatchRequestController(requests, matchmaking)
	matchRequestController.SetMessagingService(socketHandler.GetMessaging())
	conversationController := controllers.NewConversationController(conversations)

	// Initialize regular routes
	routes.SetupRoutes(app, matchRequestController, conversationController)

	// Background expiry sweeper for stale waiting requests
	cronService := services.NewCronService(store, time.Duration(config.RequestTTLSeconds)*time.Second)
	cronService.StartExpirySweeper(time.Duration(config.SweepIntervalSeconds) * time.Second)

	port := config.ServerPort
	fmt.Printf("🚀 Server starting on port :%d\n", port)
	fmt.Printf("🔌 Socket.IO server available at :%d/socket.io\n", port)

	log.Fatal(app.Listen(fmt.Sprintf(":%d", port)))
}
