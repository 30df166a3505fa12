package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"Bazaarly/internal/config"
	"Bazaarly/internal/database"
	"Bazaarly/internal/handlers"
	"Bazaarly/internal/logger"
	"Bazaarly/internal/pkg/ratelimit"
	"Bazaarly/internal/routes"
	"Bazaarly/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, syncLogger := logger.Initialize(cfg.IsProduction())
	defer syncLogger()

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := services.NewDisabledImageStore()
	if cfg.Cloudinary.Enabled() {
		cld, err := services.NewCloudinaryStore(cfg.Cloudinary)
		if err != nil {
			zap.L().Fatal("Failed to initialize Cloudinary", zap.Error(err))
		}
		store = cld
		zap.L().Info("Cloudinary image store initialized")
	} else {
		zap.L().Warn("Cloudinary credentials not set, image uploads are disabled")
	}

	// A nil *EmailService must not end up inside the interface.
	var mailer services.Mailer
	if es := services.NewEmailService(cfg.Email); es != nil {
		mailer = es
	}

	verifier, err := services.NewStaticVerifier(cfg.Payment.UPIID, cfg.Payment.UPIPIN)
	if err != nil {
		zap.L().Fatal("Failed to initialize payment verifier", zap.Error(err))
	}

	paymentAttempts := ratelimit.New(cfg.Payment.MaxAttempts, cfg.Payment.AttemptWindow)
	paymentAttempts.StartCleanup(ctx, time.Minute)
	listingLimiter := ratelimit.New(cfg.ListingRateLimit.Limit, cfg.ListingRateLimit.Window)
	listingLimiter.StartCleanup(ctx, 5*time.Minute)

	// Initialize services
	notifications := services.NewNotificationService(db, mailer)
	search := services.NewSearchService(db, notifications)
	listings := services.NewListingService(db, store, cfg.Cloudinary.Folder, cfg.MaxListingImages)
	moderation := services.NewModerationService(db, notifications, search)
	offers := services.NewOfferService(db, notifications)
	payments := services.NewPaymentService(db, notifications, verifier, paymentAttempts)
	disputes := services.NewDisputeService(db, notifications)
	ratings := services.NewRatingService(db)
	users := services.NewUserService(db)
	categories := services.NewCategoryService(db)
	chats := services.NewChatService(db, notifications)
	carts := services.NewCartService(db)

	app := fiber.New(fiber.Config{
		AppName:   "Bazaarly API v1.0",
		BodyLimit: cfg.BodyMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Bazaarly API",
			"status":  "running",
			"version": "1.0",
		})
	})

	routes.SetupRoutes(app, routes.Deps{
		JWTSecret:      cfg.JWTSecret,
		Accounts:       users,
		ListingLimiter: listingLimiter,

		Users:         handlers.NewUserHandler(users, ratings, cfg.JWTSecret),
		Admin:         handlers.NewAdminHandler(db),
		Categories:    handlers.NewCategoryHandler(categories),
		Listings:      handlers.NewListingHandler(listings),
		Moderation:    handlers.NewModerationHandler(moderation),
		Offers:        handlers.NewOfferHandler(offers),
		Payments:      handlers.NewPaymentHandler(payments),
		Ratings:       handlers.NewRatingHandler(ratings),
		Disputes:      handlers.NewDisputeHandler(disputes),
		Notifications: handlers.NewNotificationHandler(notifications),
		Searches:      handlers.NewSearchHandler(search),
		Chats:         handlers.NewChatHandler(chats),
		Carts:         handlers.NewCartHandler(carts),
	})

	go func() {
		<-ctx.Done()
		zap.L().Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zap.L().Error("Server shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("Bazaarly server starting", zap.String("port", cfg.Port))
	if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
