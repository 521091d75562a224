package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/thependalorian/buffrhost-sub008/config"
	"github.com/thependalorian/buffrhost-sub008/database"
	"github.com/thependalorian/buffrhost-sub008/handlers"
	"github.com/thependalorian/buffrhost-sub008/services"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	// Image uploads are optional; without Cloudinary credentials the API
	// runs with the image endpoints answering 503.
	var media *services.MediaService
	if config.AppConfig.CloudinaryURL != "" {
		media, err = services.NewMediaService(config.AppConfig.CloudinaryURL)
		if err != nil {
			log.Printf("Media service disabled: %v", err)
			media = nil
		}
	}

	h := handlers.NewHandler(db, media)

	sweeper := services.NewReservationSweeper(
		h.Availability,
		time.Duration(config.AppConfig.SweepIntervalSeconds)*time.Second,
		time.Duration(config.AppConfig.HoldTTLMinutes)*time.Minute,
	)
	sweeper.Start()

	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "BuffrHost availability core is running",
		})
	})

	api := router.Group("/api/v1")
	api.Use(handlers.AuthMiddleware())
	{
		// Property management
		api.POST("/properties", handlers.AdminMiddleware(), h.CreateProperty)
		api.GET("/properties", h.ListProperties)
		api.GET("/properties/:id", h.GetProperty)
		api.PUT("/properties/:id", handlers.ManagerMiddleware(), h.UpdateProperty)
		api.PUT("/properties/:id/deactivate", handlers.AdminMiddleware(), h.DeactivateProperty)

		// Bookable resources (rooms and tables)
		api.POST("/resources", handlers.ManagerMiddleware(), h.CreateResource)
		api.GET("/resources", h.ListResources)
		api.GET("/resources/:id", h.GetResource)
		api.PUT("/resources/:id", handlers.ManagerMiddleware(), h.UpdateResource)
		api.PUT("/resources/:id/deactivate", handlers.ManagerMiddleware(), h.DeactivateResource)
		api.POST("/resources/:id/image", handlers.ManagerMiddleware(), h.UploadResourceImage)
		api.GET("/resources/:id/availability", h.CheckResourceAvailability)

		// Reservations
		api.POST("/reservations", h.CreateReservation)
		api.GET("/reservations", h.ListReservations)
		api.GET("/reservations/:id", h.GetReservation)
		api.PUT("/reservations/:id/confirm", h.ConfirmReservation)
		api.PUT("/reservations/:id/cancel", h.CancelReservation)

		// Guest profiles
		api.POST("/customers", h.CreateCustomer)
		api.GET("/customers", h.ListCustomers)
		api.GET("/customers/:id", h.GetCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)

		// Menu
		api.POST("/menu", handlers.ManagerMiddleware(), h.CreateMenuItem)
		api.GET("/menu", h.ListMenuItems)
		api.GET("/menu/:id", h.GetMenuItem)
		api.PUT("/menu/:id", handlers.ManagerMiddleware(), h.UpdateMenuItem)
		api.DELETE("/menu/:id", handlers.ManagerMiddleware(), h.DeleteMenuItem)
		api.POST("/menu/:id/image", handlers.ManagerMiddleware(), h.UploadMenuItemImage)

		// Inventory
		api.POST("/inventory", handlers.ManagerMiddleware(), h.CreateInventoryItem)
		api.GET("/inventory", h.ListInventoryItems)
		api.GET("/inventory/low-stock", h.GetLowStockItems)
		api.GET("/inventory/expiring", h.GetExpiringItems)
		api.GET("/inventory/:id", h.GetInventoryItem)
		api.PUT("/inventory/:id", handlers.ManagerMiddleware(), h.UpdateInventoryItem)
		api.POST("/inventory/:id/transactions", h.RecordStockTransaction)
		api.GET("/inventory/:id/transactions", h.GetTransactionHistory)
		api.PUT("/inventory/:id/adjust", handlers.ManagerMiddleware(), h.AdjustStock)

		// Orders
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.PUT("/orders/:id/status", h.TransitionOrderStatus)
		api.POST("/orders/:id/items", h.AddOrderItem)
		api.PUT("/orders/:id/items/:itemId", h.UpdateOrderItem)
		api.DELETE("/orders/:id/items/:itemId", h.RemoveOrderItem)
		api.GET("/orders/:id/history", h.GetOrderHistory)
	}

	addr := "0.0.0.0:" + config.AppConfig.ServerPort
	log.Printf("Starting BuffrHost core on %s", addr)
	log.Fatal(http.ListenAndServe(addr, c.Handler(router)))
}
