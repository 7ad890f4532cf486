package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
	"tow-dispatch-service/internal/adapters/cache"
	"tow-dispatch-service/internal/adapters/fleet"
	"tow-dispatch-service/internal/adapters/repositories"
	"tow-dispatch-service/internal/api"
	"tow-dispatch-service/internal/platform/db"
	"tow-dispatch-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis/Postgres caches, the fleet
// HTTP client) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	seedPath := getEnv("SEED_PATH", "data/seeds/dispatch.json")
	port := getEnv("PORT", "8080")

	fleetBaseURL := os.Getenv("FLEET_BASE_URL")
	if strings.TrimSpace(fleetBaseURL) == "" {
		log.Fatal("FLEET_BASE_URL is required")
	}
	fleetAPIKey := os.Getenv("FLEET_API_KEY")

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(sqliteDB, seedPath); err != nil {
		log.Fatal(err)
	}

	locationCache, closeCache, err := buildLocationCache(sqliteDB)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	// The fleet client checks the persistent location cache before each
	// remote owner lookup.
	fleetClient, err := fleet.NewClient(fleetBaseURL, fleetAPIKey, locationCache)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{
		UnitRepo:  repositories.NewSqliteUnitRepository(sqliteDB),
		AssetRepo: repositories.NewSqliteAssetRepository(sqliteDB),
		Resolver:  fleetClient,
		Coupler:   fleetClient,
		Cases:     fleetClient,
	})

	// The write timeout covers a full dispatch pass: one coupling call
	// per committed assignment, each awaited in sequence.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openDB(dbPath string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqliteDB, nil
}

func initAndSeed(sqliteDB *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(sqliteDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(sqliteDB, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// buildLocationCache picks the owner-location cache backend:
// Redis when REDIS_ADDR is set, Postgres when DATABASE_URL is set,
// otherwise the local SQLite file.
func buildLocationCache(sqliteDB *sql.DB) (ports.LocationCache, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); strings.TrimSpace(addr) != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Printf("location cache backend=redis addr=%s", addr)
		return cache.NewRedisLocationCache(client, 15*time.Minute), func() { client.Close() }, nil
	}

	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pgDB, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("location cache: %w", err)
		}
		log.Printf("location cache backend=postgres")
		return cache.NewSQLLocationCache(pgDB), func() { pgDB.Close() }, nil
	}

	log.Printf("location cache backend=sqlite")
	return cache.NewSqliteLocationCache(sqliteDB), func() {}, nil
}
