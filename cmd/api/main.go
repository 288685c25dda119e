package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/access"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Community Access Control API
// @version         1.0
// @description     Role, module-visibility and household-delegation management for residential communities.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub for change notifications
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	identityRepo := repository.NewIdentityRepository(db)
	assignmentRepo := repository.NewRoleAssignmentRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	householdRepo := repository.NewHouseholdRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	txManager := repository.NewTransactionManager(db)

	snapshotCache := access.NewCache(access.DefaultTTL, nil)

	auditService := service.NewAuditService(db)
	accessService := service.NewAccessService(identityRepo, assignmentRepo, communityRepo, snapshotCache)
	identityService := service.NewIdentityService(identityRepo, assignmentRepo, tokenRepo, txManager)
	roleService := service.NewRoleService(identityRepo, assignmentRepo, auditService, accessService)
	communityService := service.NewCommunityService(communityRepo, auditService, accessService, wsHub)
	householdService := service.NewHouseholdService(identityRepo, assignmentRepo, householdRepo, auditService, txManager)

	// Guard middlewares resolve snapshots through the access service
	middleware.InitAccessMiddleware(accessService)

	// Initialize Handlers
	identityHandler := handler.NewIdentityHandler(identityService)
	accessHandler := handler.NewAccessHandler(accessService)
	roleHandler := handler.NewRoleHandler(roleService)
	communityHandler := handler.NewCommunityHandler(communityService)
	householdHandler := handler.NewHouseholdHandler(householdService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for flag-change notifications
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	identityHandler.RegisterRoutes(router.Group(""))
	accessHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	communityHandler.RegisterRoutes(router.Group(""))
	householdHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
