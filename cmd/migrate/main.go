package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/models"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	drop := flag.Bool("drop", false, "drop existing tables first")
	seed := flag.Bool("seed", false, "insert sample data after creating tables")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if *drop {
		log.Println("Dropping tables...")
		dropTables(ctx, db)
	}

	log.Println("Creating tables...")
	createTables(ctx, db)

	if *seed {
		log.Println("Seeding sample data...")
		seedData(ctx, db)
	}

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	// Reverse dependency order
	tables := []interface{}{(*models.Ticket)(nil), (*models.Order)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Order)(nil), (*models.Ticket)(nil)}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	order := models.Order{
		ID:            "order-seed-001",
		OrderNumber:   "4D691144",
		CustomerName:  "Alice Wonderland",
		CustomerEmail: "alice@example.com",
		EventName:     "Summer Fest 2026",
		VenueName:     "Finsbury Park",
		EventDate:     time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Quantity:      2,
		UnitPrice:     85.00,
		TotalPrice:    170.00,
		Currency:      "GBP",
		Status:        models.OrderStatusConfirmed,
		HoldReference: "hold-seed-001",
		CreatedAt:     time.Now(),
	}
	_, _ = db.NewInsert().Model(&order).Exec(ctx)

	tickets := []models.Ticket{
		{ID: "ticket-seed-001", OrderID: order.ID, Status: models.TicketStatusPending},
		{ID: "ticket-seed-002", OrderID: order.ID, Status: models.TicketStatusPending},
	}
	_, _ = db.NewInsert().Model(&tickets).Exec(ctx)
}
