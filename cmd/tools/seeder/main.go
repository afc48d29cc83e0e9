package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	seedProducts(ctx, conn)
	seedDiscountCodes(ctx, conn)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, conn *pgx.Conn) {
	products := []struct {
		ID       string
		Name     string
		Category string
		Price    int64
		Stock    int
	}{
		{"polo-navy", "Navy Work Polo", "Polo Shirts", 1_200, 500},
		{"polo-black", "Black Work Polo", "Polo Shirts", 1_200, 420},
		{"polo-royal", "Royal Blue Work Polo", "Polo Shirts", 1_250, 310},
		{"tee-white", "White Cotton Tee", "T-Shirts", 650, 800},
		{"tee-charcoal", "Charcoal Cotton Tee", "T-Shirts", 650, 760},
		{"hoodie-grey", "Grey Pullover Hoodie", "Hoodies", 2_400, 240},
		{"hoodie-navy", "Navy Zip Hoodie", "Hoodies", 2_750, 180},
		{"softshell-black", "Black Softshell Jacket", "Jackets", 3_950, 120},
		{"hivis-vest", "Hi-Vis Safety Vest", "Safety Wear", 450, 1000},
		{"hivis-jacket", "Hi-Vis Bomber Jacket", "Safety Wear", 4_500, 90},
		{"apron-denim", "Denim Bib Apron", "Aprons", 1_850, 150},
		{"cap-classic", "Classic Snapback Cap", "Headwear", 850, 350},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		_, err := conn.Exec(ctx, `
			INSERT INTO products (id, name, category, unit_price_pence, stock)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				unit_price_pence = EXCLUDED.unit_price_pence,
				stock = EXCLUDED.stock;
		`, p.ID, p.Name, p.Category, p.Price, p.Stock)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.ID, err)
		}
	}
}

func seedDiscountCodes(ctx context.Context, conn *pgx.Conn) {
	now := time.Now()
	yearOut := now.AddDate(1, 0, 0)

	codes := []struct {
		Code           string
		Kind           string
		ValuePence     int64
		PercentBps     int
		MinSpendPence  int64
		Categories     []string
		FirstOrderOnly bool
	}{
		{"SAVE10", "percent", 0, 1_000, 0, nil, false},
		{"WELCOME15", "percent", 0, 1_500, 0, nil, true},
		{"TENNER", "fixed_amount", 1_000, 0, 5_000, nil, false},
		{"SAFETYFIRST", "percent", 0, 2_000, 0, []string{"Safety Wear"}, false},
		{"BIGORDER", "fixed_amount", 2_500, 0, 25_000, nil, false},
	}

	log.Println("Seeding discount codes...")
	for _, c := range codes {
		_, err := conn.Exec(ctx, `
			INSERT INTO discount_codes
				(code, kind, value_pence, percent_bps, min_spend_pence, categories, first_order_only, starts_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (code) DO NOTHING;
		`, c.Code, c.Kind, c.ValuePence, c.PercentBps, c.MinSpendPence, c.Categories, c.FirstOrderOnly, now, yearOut)
		if err != nil {
			log.Printf("Failed to seed code %s: %v", c.Code, err)
		}
	}
}
