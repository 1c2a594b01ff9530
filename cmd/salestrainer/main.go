package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"SalesTrainer/internal/config"
	"SalesTrainer/internal/trainer"
)

func main() {
	var traineeName string
	flag.StringVar(&traineeName, "trainee", "", "Trainee name (can also be set interactively)")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app, err := trainer.New(cfg, traineeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize trainer: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
