package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"coralbay/estate/internal/api/handlers"
	"coralbay/estate/internal/api/middleware"
	"coralbay/estate/internal/captcha"
	"coralbay/estate/internal/config"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/services"
	"coralbay/estate/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient, configSvc services.IConfigService) *gin.Engine {
	// Initialize repositories and services needed by API handlers
	listingRepo := repository.NewMongoListingRepository(db)
	messageRepo := repository.NewMongoMessageRepository(db)

	listingService := services.NewListingService(listingRepo, cfg, configSvc)
	directoryService := services.NewDirectoryService(listingRepo)
	chatService := services.NewChatService(messageRepo)
	authService := services.NewAuthService(cfg)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	// Initialize Captcha Verifier
	captchaVerifier := captcha.NewTurnstileVerifier(cfg)

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, configSvc)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.CaptchaMiddleware(cfg, captchaVerifier))
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(listingService, directoryService)
	agentListingHandler := handlers.NewAgentListingHandler(listingService, s3StorageService, taskClient)
	moderationHandler := handlers.NewModerationHandler(listingService, taskClient)
	chatHandler := handlers.NewChatHandler(chatService)

	v1 := r.Group("/v1")
	{
		// Public routes (rate limiting already applied globally)
		v1.GET("/catalog", catalogHandler.Search)
		v1.GET("/catalog/filters", catalogHandler.FilterOptions)
		v1.GET("/listing/:id", catalogHandler.GetListing)

		v1.POST("/login/agent", authHandler.LoginAgent)
		v1.POST("/login/manager", authHandler.LoginManager)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Agent portal
		agent := v1.Group("/agent")
		agent.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			agent.GET("/listings", agentListingHandler.MyListings)
			agent.POST("/listings", agentListingHandler.CreateListing)
			agent.POST("/listings/:id/resubmit", agentListingHandler.ResubmitListing)
			agent.POST("/listings/:id/photos", agentListingHandler.RequestPhotoUpload)
			agent.POST("/listings/:id/photos/complete", agentListingHandler.CompletePhotoUpload)
			agent.GET("/chat", chatHandler.List)
			agent.POST("/chat", chatHandler.Post)
		}

		// Manager portal
		manager := v1.Group("/manager")
		manager.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.ManagerMiddleware())
		{
			manager.GET("/queue", moderationHandler.Queue)
			manager.POST("/listings/:id/decision", moderationHandler.Decide)
			manager.GET("/chat/:agent_id", chatHandler.List)
			manager.POST("/chat/:agent_id", chatHandler.Post)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine.
// Requires the Redis client for the getTestEmail endpoint.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // Expect ["action_type", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [actionType, email]"})
				return
			}
			actionType := args[0]
			emailAddr := args[1]
			redisKey := fmt.Sprintf("mockemail:%s:%s", emailAddr, actionType)

			// Poll Redis briefly for the key
			var emailJsonData string
			var getErr error
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ { // Poll up to ~2 seconds
				emailJsonData, getErr = rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					found = true
					rdb.Del(ctx, redisKey) // Delete after fetching
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				// If redis.Nil, wait and retry
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJsonData), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
