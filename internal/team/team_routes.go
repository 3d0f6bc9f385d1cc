package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/config"
	mw "github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/rmiddleware"
)

// RegisterRoutes sets up team routes.
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, ratings RatingSource) {
	repo := NewRepository(db)
	service := NewService(repo, tournament.NewRepository(db), tournament.NewSlotLedger(db), ratings)
	controller := NewController(service)

	teamRoutes := router.Group("/teams")
	teamRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		teamRoutes.POST("", controller.CreateTeam)
		teamRoutes.POST("/join", controller.JoinTeam)
		teamRoutes.GET("/me", controller.MyTeam)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.DELETE("/teams/:id", controller.DisbandTeam)
	}
}
