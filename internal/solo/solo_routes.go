package solo

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexclash/nexclash/config"
	mw "github.com/nexclash/nexclash/internal/middleware"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/rmiddleware"
)

// RegisterRoutes sets up solo pool routes.
func RegisterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, ratings RatingSource) {
	repo := NewRepository(db)
	service := NewService(repo, tournament.NewRepository(db), tournament.NewSlotLedger(db), ratings)
	controller := NewController(service)

	router.GET("/tournaments/:id/pool", controller.GetPool)

	protected := router.Group("/tournaments/:id/solo-registrations")
	protected.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		protected.POST("", controller.Register)
		protected.GET("/me", controller.MyRegistration)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.DELETE("/tournaments/:id/solo-registrations/:playerId", controller.RemoveRegistration)
	}
}
