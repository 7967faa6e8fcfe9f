package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_tracker/internal/config"
	"attendance_tracker/internal/handler"
	"attendance_tracker/internal/middleware"
	"attendance_tracker/internal/repository"
	"attendance_tracker/internal/service"
	"attendance_tracker/internal/sms"
	"attendance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionTokenValidity = 7 * 24 * time.Hour

func main() {
	// Load .env file
	dotenvErr := godotenv.Load()

	appEnv := os.Getenv("APP_ENV")
	if err := utils.InitLogger(appEnv); err != nil {
		os.Exit(1)
	}
	defer utils.SyncLogger()

	if dotenvErr != nil {
		utils.Info("No .env file found, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		utils.Fatal("Failed to load DB config", zap.Error(err))
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		utils.Fatal("JWT_SECRET_KEY not set in environment")
	}

	geofenceCfg, err := config.LoadGeofenceConfig()
	if err != nil {
		utils.Fatal("Failed to load geofence config", zap.Error(err))
	}

	otpCfg := config.LoadOTPConfig()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		utils.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		utils.Fatal("Failed to auto-migrate database", zap.Error(err))
	}

	// --- Challenge Store ---
	// Redis when configured, in-process map with a janitor sweep otherwise.
	var challengeStore repository.ChallengeStore
	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient, err = config.ConnectRedis(redisURL)
		if err != nil {
			utils.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		challengeStore = repository.NewRedisChallengeStore(redisClient)
		utils.Info("Using Redis challenge store")
	} else {
		challengeStore = repository.NewMemoryChallengeStore(time.Minute)
		utils.Info("Using in-memory challenge store")
	}
	defer challengeStore.Close()

	// --- SMS Sender ---
	var smsSender sms.Sender
	if gatewayURL := os.Getenv("SMS_GATEWAY_URL"); gatewayURL != "" {
		smsSender = sms.NewGatewaySender(gatewayURL, os.Getenv("SMS_API_KEY"), os.Getenv("SMS_SECRET_KEY"))
		utils.Info("Using SMS gateway sender", zap.String("url", gatewayURL))
	} else {
		smsSender = sms.NewConsoleSender()
		utils.Info("Using console SMS sender (development)")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(jwtSecret, sessionTokenValidity)

	// --- Initialize Repositories ---
	employeeRepo := repository.NewEmployeeRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)

	// --- Initialize Services ---
	verificationService := service.NewVerificationService(challengeStore, employeeRepo, smsSender, jwtUtil, otpCfg.TTL)
	authService := service.NewAuthService(employeeRepo, jwtUtil)
	attendanceService := service.NewAttendanceService(sessionRepo, geofenceCfg.Workplace, geofenceCfg.RadiusMeters)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(verificationService, authService, otpCfg.DebugResponse)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)

	// --- Setup Gin Router ---
	if appEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	attendanceHandler.RegisterAttendanceRoutes(apiGroup, jwtAuthMW)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "healthy", "redis": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		utils.Info("Server starting", zap.String("port", serverPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Fatal("Server forced to shutdown", zap.Error(err))
	}

	utils.Info("Server exiting")
}
