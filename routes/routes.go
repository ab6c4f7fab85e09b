package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wisdomairey/real-estate-listings-app/handlers"
	"github.com/wisdomairey/real-estate-listings-app/middleware"
)

type Controllers struct {
	Properties *handlers.PropertyController
	Auth       *handlers.AuthController
	Health     *handlers.HealthController
}

type Options struct {
	Authenticator middleware.Authenticator
	// UploadDir is served at /uploads when images live on local disk.
	UploadDir string
	Gatherer  prometheus.Gatherer
}

func RegisterRoutes(e *echo.Echo, ctl Controllers, opts Options) {
	e.GET("/health", ctl.Health.HealthCheck)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	authenticate := middleware.Authenticate(opts.Authenticator)
	optional := middleware.OptionalAuth(opts.Authenticator)
	admin := middleware.RequireAdmin()

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", ctl.Auth.Login)
	auth.GET("/me", ctl.Auth.Me, authenticate)
	auth.POST("/logout", ctl.Auth.Logout, authenticate)
	auth.GET("/verify", ctl.Auth.Verify, authenticate)
	auth.PUT("/change-password", ctl.Auth.ChangePassword, authenticate)

	properties := api.Group("/properties")
	properties.GET("", ctl.Properties.ListProperties, optional)
	properties.GET("/admin/stats", ctl.Properties.GetPropertyStats, authenticate, admin)
	properties.GET("/:id", ctl.Properties.GetProperty, optional)
	properties.POST("", ctl.Properties.CreateProperty, authenticate, admin)
	properties.PUT("/:id", ctl.Properties.UpdateProperty, authenticate, admin)
	properties.DELETE("/:id", ctl.Properties.DeleteProperty, authenticate, admin)
	properties.DELETE("/:id/images", ctl.Properties.RemovePropertyImage, authenticate, admin)
}
