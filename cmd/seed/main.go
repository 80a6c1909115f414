package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/emarket/emarket/config"
	"github.com/emarket/emarket/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "seller@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var sellerID string
	err = db.QueryRow(`
		INSERT INTO identities (email, password_hash, anonymous)
		VALUES ($1, $2, false)
		ON CONFLICT (email) DO UPDATE SET password_hash=EXCLUDED.password_hash
		RETURNING id
	`, email, hash).Scan(&sellerID)
	if err != nil {
		log.Fatalf("failed to seed identity: %v", err)
	}
	fmt.Printf("seeded identity: id=%s email=%s password=%s\n", sellerID, email, password)

	if _, err := db.Exec(`
		INSERT INTO profiles (user_id, email, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO NOTHING
	`, sellerID, email); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}

	products := []struct {
		name, description string
		price             float64
	}{
		{"Vintage Desk Lamp", "Brass desk lamp from the 1960s, fully rewired.", 45.00},
		{"Mechanical Keyboard", "Tenkeyless board with brown switches, lightly used.", 79.99},
		{"Ceramic Plant Pot", "Hand-thrown pot, 15cm, drainage hole included.", 19.99},
	}
	for _, p := range products {
		var exists bool
		if err := db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM products WHERE seller_id=$1 AND name=$2)`,
			sellerID, p.name,
		).Scan(&exists); err != nil {
			log.Fatalf("failed to check product: %v", err)
		}
		if exists {
			continue
		}
		if _, err := db.Exec(`
			INSERT INTO products (name, description, price, image_url, seller_id)
			VALUES ($1, $2, $3, '', $4)
		`, p.name, p.description, p.price, sellerID); err != nil {
			log.Fatalf("failed to seed product %q: %v", p.name, err)
		}
		fmt.Printf("seeded product: %s ($%.2f)\n", p.name, p.price)
	}
}
