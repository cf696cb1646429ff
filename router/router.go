// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftship/sentinel/controller"
	"github.com/driftship/sentinel/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
	requiredGroups []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Identity(requiredGroups))

	api := router.Group("/api/v1")

	controllers.Authz.RegisterRoutes(api)
	controllers.Role.RegisterRoutes(api)
	controllers.Assignment.RegisterRoutes(api)
	controllers.Permission.RegisterRoutes(api)

	return router
}
