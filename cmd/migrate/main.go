package main

import (
	"context"
	"log"
	"os"

	pg "github.com/hamed0406/statuspage/internal/repo/postgres"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is empty")
	}
	if err := pg.Migrate(context.Background(), dsn); err != nil {
		log.Fatal(err)
	}
	log.Println("migrations: up OK")
}
