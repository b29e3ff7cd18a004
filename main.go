package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stacksquest-api/handlers"
	"stacksquest-api/models"
	"stacksquest-api/services"
	"stacksquest-api/utils"
	"stacksquest-api/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — badge artwork uploads
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Quest{},
		&models.QuestStep{},
		&models.QuestReward{},
		&models.UserProgress{},
		&models.NFTBadge{},
		&models.UserNFTBadge{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := models.SeedDefaultBadges(db); err != nil {
		log.Fatal("failed to seed badges:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	tokenService, err := services.NewTokenService()
	if err != nil {
		log.Fatal("failed to configure tokens:", err)
	}

	userService := services.NewUserService(db)
	questService := services.NewQuestService(db)
	badgeService := services.NewBadgeService(db)
	questEngine := services.NewQuestEngine(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reconcile on-chain badge mints when a chain indexer is configured
	if os.Getenv("STACKS_API_URL") != "" {
		mintSyncClient := workers.NewBadgeMintSyncClient(db)
		go workers.PollBadgeMints(ctx, mintSyncClient, 30*time.Second)
		log.Println("✅ Badge mint sync running (every 30s)")
	}

	questService.StartPublishScheduler()

	handlers.SetupAuthRoutes(app, userService, tokenService)
	handlers.SetupQuestRoutes(app, questService, questEngine, tokenService)
	handlers.SetupBadgeRoutes(app, badgeService, tokenService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": os.Getenv("APP_ENV"),
		})
	})

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("🚀 StacksQuest API server running on http://localhost:%s", port)
	log.Println("✅ Quest publish scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
