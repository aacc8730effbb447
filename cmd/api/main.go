package main

import (
	"log"
	"os"
	"strconv"

	_ "parcelbilling/api/swagger" // swagger docs
	"parcelbilling/internal/database"
	"parcelbilling/internal/handler"
	"parcelbilling/internal/middleware"
	"parcelbilling/internal/repository"
	"parcelbilling/internal/service"
	"parcelbilling/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Parcel Billing API
// @version         1.0
// @description     Pricing and billing core for parcel delivery: rate tiers, shipment rating, COD fees, invoices and reconciliation.
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

	billingCfg := loadBillingConfig()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	tierRepo := repository.NewRateTierRepository(db)
	clientRepo := repository.NewClientRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	itemRepo := repository.NewInvoiceItemRepository(db)
	txManager := repository.NewTransactionManager(db)

	rateService := service.NewRateService(tierRepo, clientRepo)
	tierService := service.NewRateTierService(tierRepo, db)
	clientService := service.NewClientService(clientRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, itemRepo, clientRepo, shipmentRepo, rateService, txManager, db, wsHub, billingCfg)
	auditService := service.NewAuditService(db)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	rateHandler := handler.NewRateHandler(rateService)
	tierHandler := handler.NewRateTierHandler(tierService)
	clientHandler := handler.NewClientHandler(clientService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API Routing
	rateHandler.RegisterRoutes(router.Group(""))
	tierHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadBillingConfig reads the company-wide billing knobs from the environment.
// Bad values are fatal; billing at the wrong tax rate is worse than refusing
// to start.
func loadBillingConfig() service.BillingConfig {
	taxRateStr := os.Getenv("BILLING_TAX_RATE")
	if taxRateStr == "" {
		taxRateStr = "0.10"
	}
	taxRate, err := decimal.NewFromString(taxRateStr)
	if err != nil {
		log.Fatalf("Invalid BILLING_TAX_RATE %q: %v", taxRateStr, err)
	}

	dueDaysStr := os.Getenv("INVOICE_DUE_DAYS")
	if dueDaysStr == "" {
		dueDaysStr = "15"
	}
	dueDays, err := strconv.Atoi(dueDaysStr)
	if err != nil || dueDays < 0 {
		log.Fatalf("Invalid INVOICE_DUE_DAYS %q", dueDaysStr)
	}

	return service.BillingConfig{TaxRate: taxRate, DueDays: dueDays}
}
