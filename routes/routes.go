package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jtmorrow/wedding-server/config"
	"github.com/jtmorrow/wedding-server/controllers"
	"github.com/jtmorrow/wedding-server/middleware"
	"github.com/jtmorrow/wedding-server/notify"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, notifier notify.Notifier, log zerolog.Logger) {
	r.GET("/health", controllers.HealthCheck(db))

	rsvp := controllers.NewRSVPController(db, notifier, log)
	addr := controllers.NewAddressController(db, notifier, log)
	admin := controllers.NewAdminController(db, cfg, log)

	api := r.Group("/api")
	{
		// Public: no guest accounts, access is by name or code only.
		api.POST("/rsvp/lookup", middleware.RateLimitLookup(), rsvp.Lookup)
		api.POST("/rsvp/:id", rsvp.Submit)

		api.GET("/address/:code", addr.Get)
		api.POST("/address/:code", addr.Save)

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/login", admin.Login)

			protected := adminGroup.Group("/")
			protected.Use(middleware.AdminJWT())
			{
				protected.POST("/guests", admin.CreateGuest)
				protected.POST("/guests/import", admin.ImportGuests)
				protected.GET("/guests", admin.ListGuests)
			}
		}
	}
}
