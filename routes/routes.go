package routes

import (
	"os"
	"strings"

	"oficinapro-backend/config"
	"oficinapro-backend/controllers"
	"oficinapro-backend/services"
	"oficinapro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the pipeline services the handlers need
type Deps struct {
	Scheduler   *services.Scheduler
	Maintenance *services.MaintenanceEngine
	Evaluation  *services.EvaluationEngine
	Cache       *services.ResultCache
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	reminders := &controllers.ReminderController{
		Scheduler:   deps.Scheduler,
		Maintenance: deps.Maintenance,
		Evaluation:  deps.Evaluation,
		Cache:       deps.Cache,
	}
	profile := &controllers.ProfileController{Cache: deps.Cache}

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Instrument routes
		instruments := api.Group("/instruments")
		{
			instruments.POST("", controllers.CreateInstrument)
			instruments.GET("", controllers.GetInstruments)
			instruments.GET("/:id", controllers.GetInstrument)
			instruments.PUT("/:id", controllers.UpdateInstrument)
			instruments.DELETE("/:id", controllers.DeleteInstrument)
		}

		// Service-order routes
		orders := api.Group("/orders")
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("", controllers.GetOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id", controllers.UpdateOrder)
			orders.POST("/:id/complete", controllers.CompleteOrder)
			orders.DELETE("/:id", controllers.DeleteOrder)
		}

		// Service catalog routes
		catalog := api.Group("/services")
		{
			catalog.POST("", controllers.CreateService)
			catalog.GET("", controllers.GetServices)
			catalog.PUT("/:id", controllers.UpdateService)
			catalog.DELETE("/:id", controllers.DeleteService)
		}

		// Reminder pipeline routes
		reminderGroup := api.Group("/reminders")
		{
			reminderGroup.POST("/templates", reminders.CreateTemplate)
			reminderGroup.GET("/templates", reminders.GetTemplates)
			reminderGroup.PUT("/templates/:id", reminders.UpdateTemplate)
			reminderGroup.DELETE("/templates/:id", reminders.DeleteTemplate)
			reminderGroup.GET("/settings", reminders.GetSettings)
			reminderGroup.PUT("/settings", reminders.UpdateSettings)
			reminderGroup.GET("/stats", reminders.GetStats)
			reminderGroup.GET("/pending", reminders.GetPending)
			reminderGroup.GET("/logs", reminders.GetLogs)
			reminderGroup.POST("/run", reminders.RunNow)
		}

		// Profile and delivery configuration routes
		profileGroup := api.Group("/profile")
		{
			profileGroup.GET("", profile.GetProfile)
			profileGroup.PUT("", profile.UpdateProfile)
			profileGroup.GET("/delivery", profile.GetDeliveryConfig)
			profileGroup.PUT("/delivery", profile.UpdateDeliveryConfig)
		}

		// Dashboard and report routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
		reportController := controllers.ReportController{}
		api.GET("/reports/reminders", reportController.GetReminderActivity)
	}

	return r
}
