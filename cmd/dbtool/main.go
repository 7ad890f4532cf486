package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"tow-dispatch-service/internal/adapters/repositories"
	"tow-dispatch-service/internal/config"
	"tow-dispatch-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool initializes and seeds the dispatch schema. With DATABASE_URL it
// targets Postgres; otherwise it falls back to the local SQLite file.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/dispatch.json")

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) != "" {
		pgDB, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pgDB.Close()

		initAndSeedPg(pgDB, seedPath)
		return
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("open sqlite database %q: %v", dbPath, err)
	}
	defer sqliteDB.Close()

	initAndSeedSqlite(sqliteDB, seedPath)
}

func initAndSeedPg(pgDB *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchemaPg(pgDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSONPg(pgDB, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}

func initAndSeedSqlite(sqliteDB *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqliteDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(sqliteDB, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
