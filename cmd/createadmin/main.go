// Command createadmin bootstraps an administrator account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wisdomairey/real-estate-listings-app/config"
	"github.com/wisdomairey/real-estate-listings-app/logger"
	"github.com/wisdomairey/real-estate-listings-app/models"
	"github.com/wisdomairey/real-estate-listings-app/repository"
	"github.com/wisdomairey/real-estate-listings-app/services"
	"github.com/wisdomairey/real-estate-listings-app/utils"
)

func main() {
	email := flag.String("email", "admin@propertyhub.com", "admin email")
	password := flag.String("password", "", "admin password (or ADMIN_PASSWORD)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "User", "last name")
	phone := flag.String("phone", "", "phone number")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if len(*password) < services.MinPasswordLength {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters\n", services.MinPasswordLength)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := config.ConnectDB(ctx, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := repository.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes failed")
	}

	if existing, err := users.FindByEmail(ctx, *email); err == nil {
		log.Info().Str("email", existing.Email).Msg("admin user already exists")
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		log.Fatal().Err(err).Msg("lookup failed")
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password failed")
	}

	admin := &models.User{
		Email:     *email,
		Password:  hash,
		Role:      models.RoleAdmin,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
		IsActive:  true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("create admin failed")
	}

	log.Info().Str("email", admin.Email).Str("id", admin.ID.Hex()).Msg("admin user created")
}
