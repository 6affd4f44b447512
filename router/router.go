package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/controllers"
	"github.com/feastly/foodmarket-app/middlewares"
	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/services"
)

// Deps bundles everything the route tree needs. The webhook route must see the
// raw request body, so it is registered outside every auth group.
type Deps struct {
	DB        *gorm.DB
	Checkout  services.CheckoutProvider
	Verifier  *services.WebhookVerifier
	Analytics *services.AnalyticsService
	Images    services.ImageStore
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	placementSvc := services.NewPlacementService(deps.DB, deps.Checkout)
	orderSvc := services.NewOrderService(deps.DB)
	reconcileSvc := services.NewReconciliationService(deps.DB)

	userCtrl := controllers.NewUserController(deps.DB, deps.Images)
	restaurantCtrl := controllers.NewRestaurantController(deps.DB, deps.Analytics, deps.Images)
	orderCtrl := controllers.NewOrderController(deps.DB, placementSvc, orderSvc)
	paymentCtrl := controllers.NewPaymentController(deps.Verifier, reconcileSvc)
	adminCtrl := controllers.NewAdminController(deps.DB, deps.Analytics)
	complaintCtrl := controllers.NewComplaintController(deps.DB)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/signup", userCtrl.Signup)
		public.POST("/login", userCtrl.Login)
	}

	// Payment provider webhook. Signature-verified, never JWT-authenticated.
	r.POST("/stripe-payments/webhook", paymentCtrl.Webhook)

	// Customer storefront, no auth needed to browse.
	r.GET("/restaurants", restaurantCtrl.ListApproved)
	r.GET("/restaurants/cuisines", restaurantCtrl.ListCuisines)
	r.GET("/restaurants/:restaurant_id", restaurantCtrl.GetDetail)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/me", userCtrl.Me)
	auth.PATCH("/me", userCtrl.UpdateProfile)

	// CUSTOMER
	customer := auth.Group("/")
	customer.Use(middlewares.RequireRoles(models.RoleCustomer))
	{
		customer.POST("/orders", orderCtrl.PlaceOrder)
		customer.GET("/orders", orderCtrl.MyOrders)
		customer.GET("/orders/:order_id", orderCtrl.OrderDetail)
	}

	// Complaints are filed by customers and restaurant owners alike.
	complainants := auth.Group("/complaints")
	complainants.Use(middlewares.RequireRoles(models.RoleCustomer, models.RoleRestaurantOwner, models.RoleComplaintManager))
	{
		complainants.POST("", complaintCtrl.Create)
		complainants.GET("/mine", complaintCtrl.MyComplaints)
		complainants.GET("/:complaint_id", complaintCtrl.ComplaintDetail)
	}

	// RESTAURANT OWNER
	owner := auth.Group("/restaurant")
	owner.Use(middlewares.RequireRoles(models.RoleRestaurantOwner))
	{
		owner.POST("/register", restaurantCtrl.Register)
		owner.GET("/me", restaurantCtrl.MyRestaurant)
		owner.PATCH("/me", restaurantCtrl.UpdateDetails)

		owner.GET("/menu", restaurantCtrl.GetMenuItems)
		owner.POST("/menu", restaurantCtrl.AddMenuItem)
		owner.PATCH("/menu/:item_id", restaurantCtrl.UpdateMenuItem)
		owner.DELETE("/menu/:item_id", restaurantCtrl.DeleteMenuItem)

		owner.GET("/orders", orderCtrl.RestaurantOrders)
		owner.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		owner.GET("/dashboard", restaurantCtrl.DashboardStats)
		owner.GET("/orders/today-stats", restaurantCtrl.TodayOrderStats)
		owner.GET("/revenue", restaurantCtrl.RevenueSeries)
		owner.GET("/analytics", restaurantCtrl.AnalyticsReport)
	}

	// ADMIN
	admin := auth.Group("/admin")
	admin.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard/stats", adminCtrl.DashboardStats)
		admin.GET("/analytics", adminCtrl.AnalyticsReport)

		admin.GET("/restaurants", adminCtrl.AllRestaurants)
		admin.PATCH("/restaurants/:restaurant_id/verify", adminCtrl.VerifyRestaurant)

		admin.GET("/orders", adminCtrl.AllOrders)
		admin.GET("/orders/:order_id", adminCtrl.SingleOrder)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		admin.GET("/customers", adminCtrl.AllCustomers)
		admin.GET("/customers/:user_id", adminCtrl.CustomerProfile)
		admin.PATCH("/users/:user_id/status", adminCtrl.UpdateUserStatus)
	}

	// COMPLAINT MANAGER
	manager := auth.Group("/complaint-manager")
	manager.Use(middlewares.RequireRoles(models.RoleComplaintManager))
	{
		manager.GET("/complaints", complaintCtrl.AllComplaints)
		manager.PATCH("/complaints/:complaint_id/review", complaintCtrl.StartReview)
		manager.PATCH("/complaints/:complaint_id/resolve", complaintCtrl.Resolve)
	}

	return r
}
