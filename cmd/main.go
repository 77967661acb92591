package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/farellandr/ticketbook/config"
	"github.com/farellandr/ticketbook/internal/server"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to a dotenv file")
	port := flag.String("port", "", "listen port (overrides PORT)")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		if !flag.CommandLine.Changed("env-file") && errors.Is(err, fs.ErrNotExist) {
			log.Printf("no %s file, using the environment", *envFile)
		} else {
			log.Fatalf("Error loading %s: %v", *envFile, err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	if err := config.InitLogger(cfg.LogFile); err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if *migrateOnly {
		log.Println("migrations applied")
		return
	}

	if err := server.Start(cfg, db); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
