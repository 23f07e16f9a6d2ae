// Command createsuperuser creates an administrative account from the
// command line, against the same database the server uses:
//
//	createsuperuser -email admin@example.com -password secret123
//
// The account gets is_staff and is_superuser set; the flags exist for
// future admin tooling and grant nothing over the HTTP API today.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/config"
	sqliteRepo "github.com/sakif/recipe-api/internal/repository/sqlite"
	"github.com/sakif/recipe-api/internal/service"
)

func main() {
	email := flag.String("email", "", "email address for the new superuser (required)")
	password := flag.String("password", "", "password for the new superuser (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createsuperuser -email <email> -password <password>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create database directory: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	users := service.NewUserService(db.Users, auth.NewPasswordService(cfg.Auth.BcryptCost), logger)

	user, err := users.CreateSuperuser(context.Background(), *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create superuser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("superuser created: %s (%s)\n", user.Email, user.ID)
}
