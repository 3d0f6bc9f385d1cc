package leaderboard

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/config"
	mw "github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/rmiddleware"
)

// RegisterRoutes sets up leaderboard routes and returns the service so the
// score sweep worker can reuse it.
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, players PlayerSource, provider MatchProvider) *Service {
	repo := NewRepository(db)
	service := NewService(repo, tournament.NewRepository(db), players, provider)
	controller := NewController(service)

	router.GET("/tournaments/:id/leaderboard", controller.GetLeaderboard)

	protected := router.Group("/tournaments/:id/leaderboard")
	protected.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		protected.POST("/refresh", controller.RefreshMyScore)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.PUT("/tournaments/:id/leaderboard/:playerId/disqualify", controller.Disqualify)
	}

	return service
}
