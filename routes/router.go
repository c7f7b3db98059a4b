package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmahmod/social-api/config"
	"github.com/devmahmod/social-api/controllers"
	"github.com/devmahmod/social-api/middleware"
	"github.com/devmahmod/social-api/utils"
)

// SetupRouter wires routes, middlewares and controllers. The database handle
// and configuration are injected; nothing here reaches for globals.
func SetupRouter(cfg config.AppConfig, db *gorm.DB) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.AccessLog(utils.Logger))
	r.Use(utils.Recovery(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, cfg)
	userController := controllers.NewUserController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	categoryController := controllers.NewCategoryController(db)

	auth := middleware.AuthRequired(cfg.JWTSecret)
	validID := middleware.ValidateIDParam()

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", auth, authController.Logout)

	usersGroup := api.Group("/users")
	usersGroup.GET("", auth, middleware.AdminRequired(), userController.ListUsers)
	usersGroup.GET("/count", auth, middleware.AdminRequired(), userController.CountUsers)
	usersGroup.GET("/profile/:id", validID, userController.GetProfile)
	usersGroup.PUT("/profile/:id", validID, auth, middleware.SelfOnly(), userController.UpdateProfile)
	usersGroup.DELETE("/profile/:id", validID, auth, middleware.SelfOrAdmin(), userController.DeleteProfile)

	postsGroup := api.Group("/posts")
	postsGroup.POST("", auth, postController.CreatePost)
	postsGroup.GET("", auth, postController.ListPosts)
	postsGroup.GET("/count", postController.CountPosts)
	postsGroup.GET("/:id", validID, postController.GetPost)
	postsGroup.PUT("/:id", validID, auth, postController.UpdatePost)
	postsGroup.DELETE("/:id", validID, auth, postController.DeletePost)
	postsGroup.PUT("/like/:id", validID, auth, postController.ToggleLike)

	commentsGroup := api.Group("/comments")
	commentsGroup.POST("", auth, commentController.CreateComment)
	commentsGroup.GET("", auth, middleware.AdminRequired(), commentController.ListComments)
	commentsGroup.PUT("/:id", validID, auth, commentController.UpdateComment)
	commentsGroup.DELETE("/:id", validID, auth, commentController.DeleteComment)

	categoriesGroup := api.Group("/categories")
	categoriesGroup.POST("", auth, middleware.AdminRequired(), categoryController.CreateCategory)
	categoriesGroup.GET("", categoryController.ListCategories)
	categoriesGroup.DELETE("/:id", validID, auth, middleware.AdminRequired(), categoryController.DeleteCategory)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	return r
}
