package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/nexclash/nexclash/config"
	"github.com/nexclash/nexclash/internal/identity"
	"github.com/nexclash/nexclash/internal/leaderboard"
	"github.com/nexclash/nexclash/internal/solo"
	"github.com/nexclash/nexclash/internal/team"
	"github.com/nexclash/nexclash/internal/tournament"
	"github.com/nexclash/nexclash/pkg/opendota"
)

// SetupRoutes wires every feature module onto one engine and returns the
// leaderboard service for the score sweep worker.
func SetupRoutes(appConfig *config.Config) (*gin.Engine, *leaderboard.Service) {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "NexClash API",
			"docs":    "/swagger/index.html",
			"healthy": true,
		})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	provider := opendota.NewClient(
		appConfig.OpenDota.BaseURL,
		appConfig.OpenDotaTimeout(),
		appConfig.OpenDota.RatePerSecond,
	)

	api := r.Group("/api")
	identityService := identity.RegisterRoutes(api, config.DB, appConfig, provider)
	tournament.RegisterRoutes(api, config.DB, appConfig)
	team.RegisterRoutes(api, config.DB, appConfig, identityService)
	solo.RegisterRoutes(api, config.DB, appConfig, identityService)
	leaderboardService := leaderboard.RegisterRoutes(api, config.DB, appConfig, identityService, provider)

	return r, leaderboardService
}
