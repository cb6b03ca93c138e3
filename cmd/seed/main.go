// Package main seeds the bookshelf database with baseline books and users.
//
// It accepts the same flags and environment variables as the server and
// only writes to an empty store:
//
//	DB_PATH=~/Bookshelf/bookshelf.db go run ./cmd/seed
//	go run ./cmd/seed -data-path /srv/bookshelf
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	fmt.Printf("Opening database at: %s\n", cfg.Database.Path)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatal("Failed to create database directory", "error", err)
	}

	st, err := sqlite.Open(cfg.Database.Path, log.WithComponent("store"))
	if err != nil {
		log.Fatal("Failed to open store", "error", err)
	}
	defer st.Close()

	coverStorage, err := covers.NewStorage(cfg.Storage.UploadsPath)
	if err != nil {
		log.Fatal("Failed to open cover storage", "error", err)
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("Failed to create hasher", "error", err)
	}

	v := validation.New()
	books := service.NewBookService(st, coverStorage, v, log.WithComponent("books"))
	users := service.NewUserService(st, hasher, v, log.WithComponent("users"))
	seeder := service.NewSeeder(st, books, users, log.WithComponent("seeder"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := seeder.Seed(ctx)
	if err != nil {
		log.Error("Seeding failed", "error", err)
		st.Close()
		os.Exit(1)
	}

	if result.BooksCreated == 0 && result.UsersCreated == 0 {
		fmt.Println("Database already populated, nothing to seed")
		return
	}

	fmt.Println("Seeding complete:")
	fmt.Printf("  Books created:   %d\n", result.BooksCreated)
	fmt.Printf("  Users created:   %d\n", result.UsersCreated)
	fmt.Printf("  Reviews created: %d\n", result.ReviewsCreated)
}
