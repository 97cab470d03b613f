package routes

import (
	"backend/configs"
	"backend/controllers"
	"backend/middlewares"
	"backend/repository"
	"backend/services"
	"backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *configs.Config, hub *ws.OrderHub) {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Wiring
	orderRepo := repository.NewOrderRepository(db)
	orderSvc := services.NewOrderService(db, orderRepo, hub)

	orderCtrl := controllers.NewOrderController(orderSvc)
	authCtrl := controllers.NewAuthController(db, cfg)

	api := r.Group("/api")

	// Auth (staff console)
	api.POST("/auth/login", authCtrl.Login)

	// Orders (ลูกค้า ไม่ต้องล็อกอิน)
	api.POST("/orders", orderCtrl.Create)
	api.POST("/delivery-order", orderCtrl.CreateDelivery)
	api.GET("/orders/:id", orderCtrl.Detail)
	api.POST("/orders/:id/feedback", orderCtrl.Feedback)

	// Orders (staff only)
	staff := api.Group("", middlewares.AuthMiddleware("staff", "admin"))
	{
		staff.GET("/orders", orderCtrl.List)
		staff.PUT("/orders/:id", orderCtrl.UpdateStatus)
	}

	// Realtime channel — ทุก client (kitchen/waiter/ลูกค้า) ต่อเส้นเดียวกัน
	r.GET("/ws/orders", hub.HandleWebSocket)
}
