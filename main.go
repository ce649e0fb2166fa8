package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ticket-marketplace/internal/attractions"
	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/discovery"
	"ticket-marketplace/internal/images"
	"ticket-marketplace/internal/itinerary"
	"ticket-marketplace/internal/llm"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/mailer"
	"ticket-marketplace/internal/monitoring"
	"ticket-marketplace/internal/orders"
	"ticket-marketplace/internal/orders/order_api"
	"ticket-marketplace/internal/payments"
	"ticket-marketplace/internal/resale"
	"ticket-marketplace/internal/search"
	"ticket-marketplace/internal/store"
	"ticket-marketplace/internal/theatre"
	"ticket-marketplace/internal/utils"
	"ticket-marketplace/internal/webhooks"
)

func connectDatabase(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	if cfg.DSN == "" {
		log.Fatal("CONFIG", "DATABASE_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting storefront gateway initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()

	client := &http.Client{
		Timeout: time.Second * 10,
	}

	bunDB := connectDatabase(cfg.Database, log)
	defer bunDB.Close()

	// Provider clients
	resaleClient := resale.NewClient(cfg.Resale, client, log)
	theatreClient := theatre.NewClient(cfg.Theatre, client, log)
	attractionsClient := attractions.NewClient(cfg.Attractions, client, log)
	discoveryClient := discovery.NewClient(cfg.Discovery, client, log)
	llmClient := llm.NewClient(cfg.LLM, client, log)

	// Local services
	db := &store.DB{Bun: bunDB}
	paymentService := payments.NewService(cfg.Stripe, log)
	mailService := mailer.New(cfg.Email, log)
	qr := orders.NewQRGenerator(cfg.Admin.QRSecret)

	orderService := orders.NewService(db, paymentService, mailService, qr, log)
	orderService.CreateProviderOrder = func(holdRef, customerName, customerEmail string) (string, error) {
		po, err := resaleClient.CreateOrder(holdRef, customerName, customerEmail)
		if err != nil {
			return "", err
		}
		return po.ID, nil
	}

	searchService := search.NewService(llmClient, discoveryClient, log)
	itineraryService := itinerary.NewService(llmClient, discoveryClient, log)
	scraper := images.NewScraper(log)

	// Handlers
	resaleHandler := resale.NewHandler(resaleClient, log)
	theatreHandler := theatre.NewHandler(theatreClient, log)
	attractionsHandler := attractions.NewHandler(attractionsClient, log)
	discoveryHandler := discovery.NewHandler(discoveryClient, log)
	searchHandler := search.NewHandler(searchService, log)
	itineraryHandler := itinerary.NewHandler(itineraryService, log)
	imagesHandler := images.NewHandler(scraper, log)
	orderHandler := order_api.NewHandler(orderService, log)
	resaleWebhook := webhooks.NewResaleHandler(orderService, log)
	stripeWebhook := payments.NewWebhookHandler(cfg.Stripe.WebhookSecret, orderService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(monitoring.Middleware)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", monitoring.Handler())

	r.Route("/api", func(r chi.Router) {
		// Resale feed
		r.Route("/events", func(r chi.Router) {
			r.Get("/", resaleHandler.ListEvents)
			r.Get("/{eventId}", resaleHandler.GetEvent)
			r.Get("/{eventId}/listings", resaleHandler.GetListings)
		})
		r.Post("/holds", resaleHandler.CreateHold)
		r.Delete("/holds/{holdRef}", resaleHandler.ReleaseHold)

		// Orders
		r.Post("/checkout", orderHandler.Checkout)
		r.Get("/orders", orderHandler.ListOrdersByEmail)
		r.Get("/orders/{orderNumber}", orderHandler.GetOrder)
		r.Post("/orders/{orderNumber}/payment-intent", orderHandler.CreatePaymentIntent)

		// Theatre
		r.Route("/theatre", func(r chi.Router) {
			r.Get("/shows", theatreHandler.ListShows)
			r.Get("/shows/{showId}", theatreHandler.GetShow)
			r.Get("/shows/{showId}/performances", theatreHandler.ListPerformances)
			r.Get("/performances/{performanceId}/seats", theatreHandler.GetSeatAvailability)
			r.Post("/bookings", theatreHandler.CreateBooking)
		})

		// Attractions
		r.Route("/attractions", func(r chi.Router) {
			r.Get("/", attractionsHandler.ListAttractions)
			r.Get("/cities", attractionsHandler.ListCities)
			r.Get("/{attractionId}", attractionsHandler.GetAttraction)
		})

		// Discovery
		r.Route("/discovery", func(r chi.Router) {
			r.Get("/events", discoveryHandler.SearchEvents)
			r.Get("/events/{eventId}", discoveryHandler.GetEvent)
			r.Get("/venues", discoveryHandler.SearchVenues)
			r.Get("/classifications", discoveryHandler.ListClassifications)
		})

		// AI features
		r.Post("/search", searchHandler.Search)
		r.Post("/itinerary", itineraryHandler.BuildPlan)

		// Image helpers
		r.Post("/images/scrape", imagesHandler.ScrapeBatch)
		r.Get("/images/lookup", imagesHandler.Lookup)

		// Webhooks
		r.Post("/webhooks/resale", resaleWebhook.Handle)
		r.Post("/webhooks/stripe", stripeWebhook.HandleWebhook)

		// Admin console
		r.Group(func(r chi.Router) {
			r.Use(auth.AdminMiddleware(cfg.Admin.JWTSecret))
			log.Info("AUTH", "JWT middleware applied to admin routes")

			r.Route("/admin/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Put("/{orderId}/status", orderHandler.UpdateStatus)
				r.Delete("/{orderId}", orderHandler.DeleteOrder)
				r.Get("/{orderId}/tickets", orderHandler.ListTickets)
				r.Post("/{orderId}/resend-email", orderHandler.ResendEmail)
			})
		})
	})
	log.Info("ROUTER", "All routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Storefront gateway running on %s", cfg.Server.Addr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Server shut down gracefully")
	}
}
