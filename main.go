package main

import (
	"fmt"
	"log"
	"os"

	"oficinapro-backend/config"
	"oficinapro-backend/models"
	"oficinapro-backend/repository"
	"oficinapro-backend/routes"
	"oficinapro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.CompanyProfile{},
		&models.Customer{},
		&models.Instrument{},
		&models.CatalogService{},
		&models.ServiceOrder{},
		&models.ServiceOrderItem{},
		&models.ReminderSettings{},
		&models.MaintenanceReminder{},
		&models.EvaluationReminder{},
		&models.MessageTemplate{},
		&models.DeliveryConfig{},
		&models.ReminderLog{},
	)
}

func main() {
	store := repository.NewStore(config.DB)
	cache := services.NewResultCache(services.DefaultCacheTTL)
	renderer := services.NewTemplateRenderer(store, services.FallbackKeep)
	delivery := services.NewDeliveryChannel(store, cache)
	maintenance := services.NewMaintenanceEngine(store, renderer, delivery, cache)
	evaluation := services.NewEvaluationEngine(store, renderer, delivery, cache)

	scheduler := services.NewScheduler(store, maintenance, evaluation, cache)
	scheduler.Start()
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(routes.Deps{
		Scheduler:   scheduler,
		Maintenance: maintenance,
		Evaluation:  evaluation,
		Cache:       cache,
	})
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
