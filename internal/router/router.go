// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/handlers"
	"github.com/javajoker/beatmarket/internal/middleware"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

const version = "1.0.0"

func Initialize(market *services.Marketplace, cfg *config.Config, log logrus.FieldLogger) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(market)
	userHandler := handlers.NewUserHandler(market)
	beatHandler := handlers.NewBeatHandler(market, cfg)
	cartHandler := handlers.NewCartHandler(market)
	socialHandler := handlers.NewSocialHandler(market)
	notificationHandler := handlers.NewNotificationHandler(market)
	newsHandler := handlers.NewNewsHandler(market)
	playerHandler := handlers.NewPlayerHandler(market, log)

	// Set JWT secret
	utils.SetJWTSecret(cfg.Session.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	session := middleware.SessionRequired(market)
	optional := middleware.OptionalSession(market)

	// Streaming and the player channel lock the marketplace themselves.
	stream := r.Group("/v1")
	{
		stream.GET("/beats/:id/audio", beatHandler.StreamAudio)
		stream.GET("/beats/:id/wav", beatHandler.StreamAudio)
		stream.GET("/player/ws", playerHandler.Connect)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.Exclusive(market))
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", session, authHandler.Logout)
			auth.GET("/me", session, authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", session, userHandler.SearchUsers)
			users.GET("/:id", optional, userHandler.GetUser)
			users.GET("/:id/beats", optional, userHandler.GetUserBeats)
		}

		// Session owner routes
		me := v1.Group("/me")
		me.Use(session)
		{
			me.PUT("/profile", userHandler.UpdateProfile)
			me.GET("/purchases", userHandler.GetPurchases)
			me.GET("/sales", middleware.RoleRequired(models.RoleSeller), userHandler.GetSales)
			me.GET("/favorites", userHandler.GetFavorites)
		}

		// Beat routes
		beats := v1.Group("/beats")
		{
			beats.GET("", optional, beatHandler.GetBeats)
			beats.GET("/meta", beatHandler.GetMeta)
			beats.GET("/:id", optional, beatHandler.GetBeat)
			beats.GET("/:id/collaborators", socialHandler.GetCollaborators)

			// Authenticated routes
			protected := beats.Group("")
			protected.Use(session)
			{
				protected.POST("", middleware.RoleRequired(models.RoleSeller), middleware.UploadRateLimit(), beatHandler.CreateBeat)
				protected.PUT("/:id", beatHandler.UpdateBeat)
				protected.DELETE("/:id", beatHandler.DeleteBeat)
				protected.POST("/:id/rating", beatHandler.RateBeat)
				protected.POST("/:id/favorite", beatHandler.ToggleFavorite)
				protected.PUT("/:id/collaborators", socialHandler.SetCollaborators)
			}
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(session)
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("", cartHandler.AddToCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.DELETE("/:beatId", cartHandler.RemoveFromCart)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		// Social routes
		friends := v1.Group("/friends")
		friends.Use(session)
		{
			friends.GET("", socialHandler.GetFriends)
			friends.POST("", socialHandler.SendFriendRequest)
			friends.PUT("/:id/accept", socialHandler.AcceptFriendRequest)
			friends.PUT("/:id/reject", socialHandler.RejectFriendRequest)
			friends.DELETE("/:id", socialHandler.RemoveFriend)
		}
		v1.GET("/collaborations", session, socialHandler.GetCollaborations)

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(session)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		// Player routes
		player := v1.Group("/player")
		player.Use(session)
		{
			player.GET("", playerHandler.GetState)
			player.POST("/:action", playerHandler.Command)
			player.DELETE("/queue", playerHandler.ClearQueue)
		}

		// News routes (public)
		news := v1.Group("/news")
		{
			news.GET("", newsHandler.GetNews)
			news.GET("/:id", newsHandler.GetNewsItem)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(session, middleware.AdminRequired())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.PUT("/users/:id/wallet", userHandler.AdjustWallet)
			admin.GET("/purchases", userHandler.ListPurchases)

			admin.POST("/news", newsHandler.CreateNews)
			admin.PUT("/news/:id", newsHandler.UpdateNews)
			admin.DELETE("/news/:id", newsHandler.DeleteNews)
		}
	}

	return r
}
