package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/qr-hotel-menu/controllers"
	"github.com/yeremiapane/qr-hotel-menu/middlewares"
	"github.com/yeremiapane/qr-hotel-menu/models"
)

func SetupRouter(d *Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(d.Metrics.Middleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.CORSOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	guest := &controllers.GuestController{
		Locations: d.Locations,
		Menu:      d.Catalog,
		Carts:     d.Carts,
		Orders:    d.Orders,
	}
	dashboard := &controllers.DashboardController{
		Orders:   d.Orders,
		Feed:     d.Feed,
		Products: d.Catalog,
		Settings: d.Settings,
	}
	webhook := &controllers.WebhookController{
		Orders:  d.Orders,
		Answers: d.Bridge,
		Secret:  d.Config.TelegramWebhookSecret,
	}

	limiter := middlewares.NewRateLimiter(d.Config.GuestRateLimit, d.Config.GuestRateBurst)
	for _, kind := range []models.LocationKind{models.LocationRoom, models.LocationFloor, models.LocationBuilding} {
		g := r.Group(kind.RoutePrefix() + "/:slug")
		g.Use(limiter.RateLimit(), d.Sessions.Guest(), middlewares.NoStore(), guest.ResolveLocation(kind))
		{
			g.GET("/", guest.MenuPage)
			g.GET("/cart/", guest.GetCart)
			g.POST("/cart/add/", guest.AddToCart)
			g.POST("/cart/remove/", guest.RemoveFromCart)
			g.POST("/cart/update/", guest.UpdateCart)
			g.POST("/create/", guest.CreateOrder)
			g.GET("/status/:order_id/", guest.OrderStatus)
		}
	}

	api := r.Group("/api")
	{
		api.GET("/orders/live/", middlewares.NoStore(), dashboard.LiveOrders)
		api.GET("/notifications/unviewed/", middlewares.NoStore(), dashboard.UnviewedNotifications)
		api.POST("/orders/:order_id/mark-viewed/", dashboard.MarkViewed)
		api.POST("/telegram/webhook/", webhook.TelegramWebhook)
	}

	staff := r.Group("/dashboard")
	{
		staff.POST("/orders/:order_id/update-status/", dashboard.UpdateStatus)
		staff.POST("/products/:product_id/toggle/", dashboard.ToggleProduct)
		staff.GET("/stats/", middlewares.NoStore(), dashboard.Stats)
		staff.GET("/statistics/", middlewares.NoStore(), dashboard.Statistics)
		staff.GET("/settings/", dashboard.GetSettings)
		staff.PUT("/settings/", dashboard.UpdateSettings)
		staff.GET("/ws", controllers.KDSHandler(d.Hub))
	}

	return r
}
