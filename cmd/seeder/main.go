//cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/handler"
	"github.com/unclebandit/customer-service/internal/logger"
	"github.com/unclebandit/customer-service/internal/repository"
	"github.com/unclebandit/customer-service/internal/storage"
)

func main() {
	file := flag.String("file", "seed/customers.json", "JSON array of customers to insert")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, l)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	n, err := seed(ctx, store.Customers, *file)
	if err != nil {
		log.Fatalf("failed to seed %s: %v", *file, err)
	}
	fmt.Printf("Seeded %d customers from %s\n", n, *file)
}

func seed(ctx context.Context, repo repository.CustomerRepositoryInterface, file string) (int, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return 0, err
	}

	var payloads []handler.CustomerPayload
	if err := json.Unmarshal(content, &payloads); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	// validate everything before writing anything
	for i := range payloads {
		if _, err := payloads[i].Validate(false); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	for i := range payloads {
		c, _ := payloads[i].Validate(false)
		c.ID = ""
		if _, err := repo.Create(ctx, c); err != nil {
			return i, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return len(payloads), nil
}
