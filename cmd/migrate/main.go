package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"atendezap/config"
	"atendezap/internal/domain/chat"
	"atendezap/internal/domain/connection"
	"atendezap/pkg/database"
)

const usage = `
AtendeZap - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM auto-migrations
  status      Show database connection status
  drop        Drop all managed tables (DANGEROUS)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	database.Connect(cfg)

	switch flag.Arg(0) {
	case "up":
		if err := database.DB.AutoMigrate(
			&chat.Ticket{},
			&chat.Message{},
			&connection.Connection{},
		); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Println("Migrations applied")
	case "status":
		if err := database.HealthCheck(); err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		log.Println("Database connection OK")
	case "drop":
		if err := database.DB.Migrator().DropTable(
			&chat.Message{},
			&chat.Ticket{},
			&connection.Connection{},
		); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	default:
		flag.Usage()
		os.Exit(1)
	}
}
