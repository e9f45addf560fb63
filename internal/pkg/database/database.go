package database

import (
	"fmt"
	"log"
	"ticket-service/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// GetConnection opens the Postgres pool used by the repositories. The
// service cannot run without its store, so failures here are fatal.
func GetConnection(cfg *config.DatabaseConfig) *sqlx.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	return db
}
