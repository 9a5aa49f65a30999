package main

import (
	"log"
	"math/rand"
	"os"
	"time"

	"trustlist_backend/config"
	"trustlist_backend/handlers"
	"trustlist_backend/internal/admission"
	"trustlist_backend/internal/cart"
	"trustlist_backend/internal/catalog"
	"trustlist_backend/internal/chatguard"
	"trustlist_backend/internal/clock"
	"trustlist_backend/internal/escrow"
	"trustlist_backend/internal/realtime"
	"trustlist_backend/internal/ws"
	"trustlist_backend/middleware"
	"trustlist_backend/utils"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.MustLoad()

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Fatal("Failed to load trust policy:", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if os.Getenv("DB_RESET") == "true" {
		if err := config.ResetAndMigrate(db); err != nil {
			log.Fatal("Failed to reset database:", err)
		}
	} else if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Event publishing degrades to log lines when Redis is off.
	var notifier realtime.Notifier = realtime.LogNotifier{}
	if cfg.Redis.Enabled {
		notifier = realtime.NewRedisNotifier(cfg.Redis)
	}

	clk := clock.Real{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	cartEngine := cart.NewEngine(cart.NewGormStore(db))
	catalogStore := catalog.NewStore(db)
	pipeline := admission.NewPipeline(policy.Admission)
	reviewer := admission.NewSimulatedReviewer(clk, rng, policy.Review)
	escrowEngine := escrow.NewEngine(db, cartEngine, notifier, clk, policy.Fees, policy.Escrow)
	guard := chatguard.NewResolver(policy.Proximity, policy.Cities)

	hub := ws.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(db, cfg.JWT.Expiration)
	productHandler := handlers.NewProductHandler(db, catalogStore, pipeline, reviewer, notifier)
	cartHandler := handlers.NewCartHandler(cartEngine, catalogStore)
	checkoutHandler := handlers.NewCheckoutHandler(db, cartEngine, catalogStore, escrowEngine)
	chatHandler := handlers.NewChatHandler(hub, db, guard)
	reviewHandler := handlers.NewReviewHandler(db, notifier)
	userHandler := handlers.NewUserHandler(db)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir)
	categoryHandler := handlers.NewCategoryHandler(db)

	app := fiber.New(fiber.Config{
		AppName:      "TrustList Backend",
		ServerHeader: "TrustList Backend Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": msg,
			})
		},
	})

	middleware.SetupMiddleware(app, cfg.Server.CORSAllowOrigins)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	// Static listing images
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", utils.AuthMiddleware, authHandler.Me)
	auth.Post("/verify-id", utils.AuthMiddleware, authHandler.VerifyGovernmentID)

	// Catalog
	api.Get("/categories", categoryHandler.GetCategories)
	api.Get("/products", productHandler.GetAllProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Post("/products", utils.AuthMiddleware, productHandler.CreateProduct)
	api.Put("/products/:id", utils.AuthMiddleware, productHandler.UpdateProduct)
	api.Delete("/products/:id", utils.AuthMiddleware, productHandler.DeleteProduct)
	api.Get("/my-products", utils.AuthMiddleware, productHandler.GetMyProducts)
	api.Post("/upload", utils.AuthMiddleware, uploadHandler.UploadImage)

	// Users
	api.Get("/users/search", utils.AuthMiddleware, userHandler.SearchUsers)
	api.Get("/users/:id", userHandler.GetProfile)
	api.Put("/users/me/location", utils.AuthMiddleware, userHandler.UpdateLocation)

	// Cart
	cartGroup := api.Group("/cart", utils.AuthMiddleware)
	cartGroup.Get("/", cartHandler.GetCart)
	cartGroup.Post("/", cartHandler.AddToCart)
	cartGroup.Put("/:productId", cartHandler.UpdateCartItem)
	cartGroup.Delete("/:productId", cartHandler.RemoveFromCart)
	cartGroup.Delete("/", cartHandler.ClearCart)

	// Checkout and transactions
	api.Post("/checkout/quote", utils.AuthMiddleware, checkoutHandler.GetQuote)
	api.Post("/checkout", utils.AuthMiddleware, checkoutHandler.Checkout)
	txGroup := api.Group("/transactions", utils.AuthMiddleware)
	txGroup.Get("/", checkoutHandler.GetTransactions)
	txGroup.Get("/:id", checkoutHandler.GetTransaction)
	txGroup.Post("/:id/advance", checkoutHandler.AdvanceTransaction)
	txGroup.Post("/:id/release", checkoutHandler.ReleaseTransaction)
	txGroup.Post("/:id/refund", checkoutHandler.RefundTransaction)

	// Chat
	chatGroup := api.Group("/chats", utils.AuthMiddleware)
	chatGroup.Post("/", chatHandler.InitPrivateChat)
	chatGroup.Get("/", chatHandler.GetMyChats)
	chatGroup.Get("/:roomID/messages", chatHandler.GetChatMessages)
	chatGroup.Get("/:roomID/status", chatHandler.GetRoomStatus)
	chatGroup.Delete("/:roomID", chatHandler.DeleteChat)

	// WebSocket endpoint; token travels as ?token= since the handshake
	// cannot carry headers from a browser
	app.Use("/ws/chat", chatHandler.WebSocketUpgradeMiddleware)
	app.Get("/ws/chat", utils.WSAuthMiddleware, chatHandler.Handler())

	// Admin review queue
	admin := api.Group("/admin", utils.AuthMiddleware, utils.AdminOnly)
	admin.Get("/reviews", reviewHandler.GetPendingReviews)
	admin.Post("/reviews/:id", reviewHandler.ResolveReview)

	middleware.SetupErrorHandler(app)

	log.Printf("🚀 Server starting on %s", cfg.Server.Address())

	if err := app.Listen(cfg.Server.Address()); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
