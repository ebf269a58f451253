// Command addstaff creates a back-office account. Staff accounts are
// provisioned from the machine, never through the public API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/aaa123456yg/music-platform/internal/store"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: addstaff <name> (password read from STAFF_PASSWORD)")
	}

	_ = godotenv.Load()

	password := os.Getenv("STAFF_PASSWORD")
	if password == "" {
		log.Fatal("STAFF_PASSWORD is required")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	staff, err := store.New(db).CreateStaff(context.Background(), os.Args[1], password)
	if err != nil {
		log.Fatalf("create staff: %v", err)
	}

	fmt.Printf("created staff account %q (id %d)\n", staff.Name, staff.ID)
}
