package tournament

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/config"
	mw "github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/pkg/rmiddleware"
)

// RegisterRoutes sets up tournament routes.
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewRepository(db)
	controller := NewController(repo)

	router.GET("/tournaments", controller.GetTournaments)
	router.GET("/tournaments/:id", controller.GetTournamentByID)

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.POST("/tournaments", controller.CreateTournament)
		adminRoutes.PUT("/tournaments/:id/status", controller.UpdateStatus)
		adminRoutes.DELETE("/tournaments/:id/registrations", controller.ResetRegistrations)
	}
}
