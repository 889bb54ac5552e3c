package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"proconnect/backend/internal/auth"
	"proconnect/backend/internal/config"
	"proconnect/backend/internal/database"
	"proconnect/backend/internal/delivery"
	"proconnect/backend/internal/engagement"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/handler"
	"proconnect/backend/internal/presence"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "proconnect/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           ProConnect API
// @version         1.0
// @description     This is the API for the ProConnect professional networking service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Core services
	graphSvc := graph.NewService(database.DB)
	graphSvc.AutoAcceptMutual = config.AppConfig.AutoAcceptMutual
	registry := presence.NewRegistry()
	router := delivery.NewRouter(database.DB, graphSvc, registry)
	engagementSvc := engagement.NewService(database.DB, graphSvc)

	h := handler.New(database.DB, graphSvc, router, engagementSvc, registry)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.AppConfig.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Live push channel (token passed as query parameter)
	r.GET("/ws", h.HandleWebSocket)

	// API v1 routes
	apiV1 := r.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", h.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", h.GetMe)
			userRoutes.GET("/me/stats", h.GetMyStats)
			userRoutes.PUT("/me/profile", h.UpdateProfile)
			userRoutes.GET("/:id", h.GetUserByID)
		}

		// Connection routes (protected)
		connectionRoutes := apiV1.Group("/connections")
		connectionRoutes.Use(auth.AuthMiddleware())
		{
			connectionRoutes.GET("", h.GetConnections)
			connectionRoutes.GET("/pending", h.GetPendingConnections)
			connectionRoutes.POST("/request", h.RequestConnection)
			connectionRoutes.POST("/accept/:id", h.AcceptConnection)
			connectionRoutes.POST("/reject/:id", h.RejectConnection)
			connectionRoutes.DELETE("/:id", h.RemoveConnection)
		}

		// Message routes (protected)
		messageRoutes := apiV1.Group("/messages")
		messageRoutes.Use(auth.AuthMiddleware())
		{
			messageRoutes.POST("", h.SendMessage)
			messageRoutes.GET("/unread/count", h.GetUnreadCount) // Must be before /:id
			messageRoutes.GET("/:id", h.GetConversation)
		}

		// Post routes (protected)
		postRoutes := apiV1.Group("/posts")
		postRoutes.Use(auth.AuthMiddleware())
		{
			postRoutes.POST("", h.CreatePost)
			postRoutes.GET("", h.GetFeed)
			postRoutes.POST("/:id/like", h.ToggleLike)
			postRoutes.POST("/:id/comment", h.AddComment)
			postRoutes.DELETE("/:id", h.DeletePost)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Printf("Server is running on %s\n", addr)
	fmt.Printf("Swagger UI is available at http://localhost%s/swagger/index.html\n", addr)
	log.Fatal(r.Run(addr))
}
