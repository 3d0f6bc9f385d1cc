package identity

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/config"
	"github.com/nexclash/nexclash/internal/middleware"
)

// RegisterRoutes sets up all identity/auth routes.
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, provider RankProvider) *Service {
	repo := NewRepository(db)
	service := NewService(repo, provider)
	controller := NewController(repo, service, appConfig)

	authPublic := router.Group("/auth")
	{
		authPublic.POST("/request-otp", controller.RequestOTP)
		authPublic.POST("/verify-otp", controller.VerifyOTP)
		authPublic.POST("/refresh-token", controller.RefreshToken)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authProtected.GET("/me", controller.GetProfile)
		authProtected.POST("/link-steam", controller.LinkSteam)
		authProtected.POST("/refresh-rank", controller.RefreshRank)
	}

	return service
}
