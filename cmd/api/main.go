package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stocksy/config"
	"stocksy/internal/handler"
	"stocksy/internal/middleware"
	"stocksy/internal/model"
	"stocksy/internal/repository"
	"stocksy/internal/service"
	"stocksy/internal/ws"
	"stocksy/pkg/database"
	"stocksy/pkg/jwt"
	"stocksy/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg.Postgres)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.ShoppingListItem{}); err != nil {
		zlog.Fatal("failed to migrate schema", zap.Error(err))
	}
	if err := database.EnsureIndexes(db); err != nil {
		zlog.Fatal("failed to create indexes", zap.Error(err))
	}

	hub := ws.NewHub(zlog)
	go hub.Run()

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	// Dependency wiring, leaves first.
	productRepo := repository.NewProductRepo(db)
	listRepo := repository.NewShoppingListRepo(db)
	userRepo := repository.NewUserRepo(db)

	productService := service.NewProductService(productRepo, listRepo, db, hub, zlog)
	listService := service.NewShoppingListService(listRepo, productRepo, db, hub, zlog)
	authService := service.NewAuthService(userRepo, tokens, zlog)

	productHandler := handler.NewProductHandler(productService)
	listHandler := handler.NewShoppingListHandler(listService)
	authHandler := handler.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{
		AppName: "Stocksy v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	// Public routes.
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Everything below is scoped to the authenticated caller.
	protected := api.Group("", middleware.RequireAuth(userRepo, tokens))

	protected.Get("/products", productHandler.List)
	protected.Post("/products", productHandler.Create)
	protected.Patch("/products/:id", productHandler.Update)
	protected.Delete("/products/:id", productHandler.Delete)

	protected.Get("/shopping-list", listHandler.List)
	protected.Post("/shopping-list/check-in", listHandler.CheckInAll)
	protected.Patch("/shopping-list/:id", listHandler.UpdateItem)
	protected.Post("/shopping-list/:id/check-in", listHandler.CheckInItem)

	// The upgrade authenticates like any other protected route; the
	// hub only ever delivers a user's events to that user's sockets.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil || user.TokenVersion != claims.TokenVersion {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("user_id", user.ID.String())
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		sess := &ws.Session{UserID: c.Locals("user_id").(string), Conn: c}
		hub.Register <- sess
		defer func() { hub.Unregister <- sess }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("forced shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}
