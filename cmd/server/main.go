package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/freightflow/freight-marketplace/internal/config"
	"github.com/freightflow/freight-marketplace/internal/database"
	"github.com/freightflow/freight-marketplace/internal/handlers"
	"github.com/freightflow/freight-marketplace/internal/realtime"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"github.com/freightflow/freight-marketplace/internal/scheduler"
	"github.com/freightflow/freight-marketplace/internal/services"
	"github.com/freightflow/freight-marketplace/pkg/logger"
	"github.com/freightflow/freight-marketplace/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// The hub is the single in-process room registry, shared by the
	// websocket handler and the notification dispatcher.
	hub := realtime.NewHub()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	carrierRepo := repository.NewCarrierRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, hub)
	userService := services.NewUserService(userRepo)
	carrierService := services.NewCarrierService(carrierRepo)
	shipmentService := services.NewShipmentService(shipmentRepo, notificationService)
	offerService := services.NewOfferService(offerRepo, shipmentRepo, userRepo, notificationService)
	documentService := services.NewDocumentService(documentRepo, shipmentRepo)
	trackingService := services.NewTrackingService(shipmentRepo, hub)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	carrierHandler := handlers.NewCarrierHandler(carrierService)
	shipmentHandler := handlers.NewShipmentHandler(shipmentService)
	offerHandler := handlers.NewOfferHandler(offerService)
	documentHandler := handlers.NewDocumentHandler(documentService, cfg.UploadDir)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWSHandler(hub, trackingService, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Shipment routes
	shipmentRoutes := router.PathPrefix("/shipments").Subrouter()
	shipmentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	shipmentRoutes.HandleFunc("", shipmentHandler.CreateShipmentHandler).Methods("POST")
	shipmentRoutes.HandleFunc("", shipmentHandler.GetMyShipmentsHandler).Methods("GET")
	shipmentRoutes.HandleFunc("/available", shipmentHandler.GetAvailableShipmentsHandler).Methods("GET")
	shipmentRoutes.HandleFunc("/{id}", shipmentHandler.GetShipmentHandler).Methods("GET")
	shipmentRoutes.HandleFunc("/{id}/status", shipmentHandler.UpdateStatusHandler).Methods("PATCH")
	shipmentRoutes.HandleFunc("/{id}/offers", offerHandler.CreateOfferHandler).Methods("POST")
	shipmentRoutes.HandleFunc("/{id}/offers", offerHandler.GetShipmentOffersHandler).Methods("GET")
	shipmentRoutes.HandleFunc("/{id}/documents", documentHandler.UploadDocumentHandler).Methods("POST")
	shipmentRoutes.HandleFunc("/{id}/documents", documentHandler.GetDocumentsHandler).Methods("GET")

	// Offer routes
	offerRoutes := router.PathPrefix("/offers").Subrouter()
	offerRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	offerRoutes.HandleFunc("", offerHandler.GetMyOffersHandler).Methods("GET")
	offerRoutes.HandleFunc("/{id}/accept", offerHandler.AcceptOfferHandler).Methods("POST")
	offerRoutes.HandleFunc("/{id}/reject", offerHandler.RejectOfferHandler).Methods("POST")

	// Carrier profile and vehicle routes
	carrierRoutes := router.PathPrefix("/carriers").Subrouter()
	carrierRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	carrierRoutes.Use(middleware.RequireRole("CARRIER"))
	carrierRoutes.HandleFunc("", carrierHandler.CreateCarrierHandler).Methods("POST")
	carrierRoutes.HandleFunc("/{id}", carrierHandler.GetCarrierHandler).Methods("GET")

	vehicleRoutes := router.PathPrefix("/vehicles").Subrouter()
	vehicleRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	vehicleRoutes.Use(middleware.RequireRole("CARRIER"))
	vehicleRoutes.HandleFunc("", carrierHandler.AddVehicleHandler).Methods("POST")
	vehicleRoutes.HandleFunc("", carrierHandler.GetVehiclesHandler).Methods("GET")

	// Notification feed routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/mark-all-read", notificationHandler.MarkAllAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PATCH")

	// Realtime channel (token is validated during the handshake)
	router.HandleFunc("/ws", wsHandler.ServeWS)

	// Uploaded documents
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Pickup reminder cron
	reminder := scheduler.NewPickupReminder(shipmentRepo, notificationService, notificationRepo)
	scheduler.StartPickupCron(reminder)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	port := cfg.Port
	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
