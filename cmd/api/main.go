package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/handler"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/watcher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (document upload will not work)", err)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The change feed turns committed location inserts into dashboard
	// pushes. The API keeps serving if it cannot start; dashboards just
	// miss live donor pins.
	feed, err := watcher.NewPostgresFeed(cfg.DatabaseURL, cfg.FeedChannel, cfg.FeedMinBackoff, cfg.FeedMaxBackoff)
	if err != nil {
		log.Printf("Warning: change feed unavailable: %v", err)
	} else {
		w := watcher.New(feed, repos.Location, repos.BloodRequest, repos.Donation, repos.Donor, services.Settings, services.Hub)
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Change feed watcher stopped: %v", err)
			}
		}()
	}

	go runExpirySweep(ctx, services, cfg.SweepInterval)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Extract real IP (behind proxies) and User-Agent for audit trails.
	app.Use(middleware.RequestInfo())

	setupRoutes(app, handlers, services)

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	services.Hub.Close()
}

// runExpirySweep periodically closes requests whose deadline has passed so
// their tokens stop reserving units.
func runExpirySweep(ctx context.Context, services *service.Services, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := services.Request.SweepExpired(ctx)
			if err != nil {
				log.Printf("Expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Expiry sweep closed %d request(s)", n)
			}
		}
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	public := v1.Group("/public")
	public.Get("/requests", h.Public.ListActiveRequests)
	public.Get("/respond", h.Public.GetRespondContext)
	public.Post("/locations", h.Location.Submit)

	auth := v1.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/verify-email", h.Auth.VerifyEmail)
	auth.Post("/resend-verification", h.Auth.ResendVerificationEmail)

	protected := v1.Group("", middleware.AuthRequired(services.Auth))

	protected.Get("/events/stream", h.Stream.Events)

	users := protected.Group("/users")
	users.Get("/me", h.User.GetProfile)
	users.Put("/me", h.User.UpdateProfile)
	users.Post("/assign-role", middleware.RequirePermission("manage_staff"), h.User.AssignRole)
	users.Patch("/:userId/active", middleware.RequirePermission("manage_staff"), h.User.SetActive)
	users.Get("/", middleware.RequireRole("admin"), h.User.GetAllUsers)
	users.Delete("/:userId", middleware.RequirePermission("manage_staff"), h.User.DeleteUser)

	hospitals := protected.Group("/hospitals")
	hospitals.Post("/", middleware.RequireRole("admin"), h.Hospital.Create)
	hospitals.Get("/", h.Hospital.List)
	hospitals.Get("/:hospitalId", h.Hospital.Get)
	hospitals.Put("/:hospitalId", middleware.RequirePermission("manage_hospital"), h.Hospital.Update)
	hospitals.Delete("/:hospitalId", middleware.RequireRole("admin"), h.Hospital.Delete)
	hospitals.Patch("/:hospitalId/verify", middleware.RequirePermission("verify_hospitals"), h.Hospital.SetVerified)
	hospitals.Get("/:hospitalId/documents", h.Hospital.ListDocuments)
	hospitals.Get("/:hospitalId/users", middleware.RequirePermission("manage_staff"), h.User.ListByHospital)
	hospitals.Get("/:hospitalId/locations/live", h.Location.ListLiveByHospital)

	donors := protected.Group("/donors")
	donors.Post("/", middleware.RequirePermission("manage_donors"), h.Donor.Create)
	donors.Get("/", h.Donor.List)
	donors.Get("/:donorId", h.Donor.Get)
	donors.Put("/:donorId", middleware.RequirePermission("manage_donors"), h.Donor.Update)
	donors.Delete("/:donorId", middleware.RequirePermission("manage_donors"), h.Donor.Delete)

	requests := protected.Group("/requests")
	requests.Post("/", middleware.RequirePermission("create_request"), h.Request.Create)
	requests.Get("/", h.Request.List)
	requests.Get("/:requestId", h.Request.Get)
	requests.Put("/:requestId", middleware.RequirePermission("update_request"), h.Request.Update)
	requests.Post("/:requestId/cancel", middleware.RequirePermission("cancel_request"), h.Request.Cancel)
	requests.Post("/:requestId/invite", middleware.RequirePermission("invite_donors"), h.Request.InviteDonors)
	requests.Get("/:requestId/donations", h.Request.ListDonations)
	requests.Get("/:requestId/locations/live", h.Request.ListLiveLocations)

	donations := protected.Group("/donations")
	donations.Post("/confirm", middleware.RequirePermission("confirm_donation"), h.Fulfillment.Confirm)
	donations.Get("/", h.Donation.List)
	donations.Get("/:donationId", h.Donation.Get)

	documents := protected.Group("/documents")
	documents.Post("/", middleware.RequirePermission("upload_documents"), h.Document.Upload)
	documents.Get("/pending", middleware.RequirePermission("review_documents"), h.Document.ListPending)
	documents.Get("/:documentId", h.Document.Get)
	documents.Post("/:documentId/review", middleware.RequirePermission("review_documents"), h.Document.Review)
	documents.Delete("/:documentId", middleware.RequirePermission("upload_documents"), h.Document.Delete)

	locations := protected.Group("/locations")
	locations.Get("/:locationId", h.Location.Get)
	locations.Delete("/:locationId", middleware.RequirePermission("manage_donors"), h.Location.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.Get("/stats", h.Dashboard.GetStats)
	dashboard.Get("/recent-activities", h.Dashboard.GetRecentActivities)

	settings := protected.Group("/settings")
	settings.Get("/", middleware.RequireRole("admin"), h.Settings.List)
	settings.Put("/:key", middleware.RequirePermission("manage_settings"), h.Settings.Update)

	audit := protected.Group("/audit")
	audit.Get("/", middleware.RequirePermission("view_audit_logs"), h.Audit.List)
	audit.Get("/:entityType/:entityId", middleware.RequirePermission("view_audit_logs"), h.Audit.ListByEntity)
}
