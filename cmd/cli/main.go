package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gatekeep-backend/config"
	"gatekeep-backend/internal/database"
	"gatekeep-backend/internal/models"
	"gatekeep-backend/internal/password"
	"gatekeep-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	// Command flags
	createUser = flag.Bool("create", false, "Create a new user")
	deleteUser = flag.Bool("delete", false, "Delete a user")

	// User data flags
	email    = flag.String("email", "", "User's email")
	passwd   = flag.String("password", "", "User's password")
	confPath = flag.String("config", "config.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(*confPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize database
	if err := database.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	userRepo := repository.NewUserRepository(database.GetDB())

	switch {
	case *createUser:
		return handleCreateUser(userRepo)
	case *deleteUser:
		return handleDeleteUser(userRepo)
	default:
		printUsage()
		return nil
	}
}

func handleCreateUser(userRepo *repository.UserRepository) error {
	if *email == "" || *passwd == "" {
		return fmt.Errorf("email and password are required")
	}

	hashed, err := password.NewBcryptHasher().Hash(*passwd)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    *email,
		Password: hashed,
	}

	if err := userRepo.Create(context.Background(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	return nil
}

func handleDeleteUser(userRepo *repository.UserRepository) error {
	if *email == "" {
		return fmt.Errorf("email is required")
	}

	user, err := userRepo.ByEmail(context.Background(), *email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no user with email %s", *email)
	}

	if err := userRepo.Delete(context.Background(), user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("Deleted user %s\n", *email)
	return nil
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  cli -create -email user@example.com -password secret")
	fmt.Println("  cli -delete -email user@example.com")
	flag.PrintDefaults()
}
