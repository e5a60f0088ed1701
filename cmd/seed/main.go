package main

import (
	"context"
	"errors"
	"log"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/modules/catalog"
	"foodgram/internal/pkg/logger"
	"foodgram/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var demoTags = []catalog.CreateTagRequest{
	{Name: "Breakfast", Color: "#E26C2D"},
	{Name: "Lunch", Color: "#49B64E"},
	{Name: "Dinner", Color: "#8775D2"},
}

var demoProducts = []catalog.CreateProductRequest{
	{Name: "eggs", MeasurementUnit: "pcs"},
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "pinch"},
	{Name: "potatoes", MeasurementUnit: "g"},
	{Name: "onion", MeasurementUnit: "pcs"},
}

type demoUser struct {
	email, username, first, last, password string
	staff                                  bool
}

var demoUsers = []demoUser{
	{"admin@foodgram.local", "admin", "Admin", "Foodgram", "admin12345", true},
	{"anna@foodgram.local", "anna", "Anna", "Cook", "anna12345", false},
	{"boris@foodgram.local", "boris", "Boris", "Baker", "boris12345", false},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatalw("db connect failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatalw("migration failed", "error", err)
	}

	ctx := context.Background()
	svc := catalog.NewService(repository.NewTagRepository(db), repository.NewProductRepository(db))

	tags := 0
	for _, req := range demoTags {
		switch _, err := svc.CreateTag(ctx, req); {
		case err == nil:
			tags++
		case errors.Is(err, catalog.ErrAlreadyExists):
		default:
			zlog.Fatalw("create tag failed", "tag", req.Name, "error", err)
		}
	}

	products := 0
	for _, req := range demoProducts {
		switch _, err := svc.CreateIngredient(ctx, req); {
		case err == nil:
			products++
		case errors.Is(err, catalog.ErrAlreadyExists):
		default:
			zlog.Fatalw("create ingredient failed", "name", req.Name, "error", err)
		}
	}

	users := repository.NewUserRepository(db)
	created := 0
	for _, u := range demoUsers {
		emailTaken, usernameTaken, err := users.EmailOrUsernameTaken(ctx, u.email, u.username)
		if err != nil {
			zlog.Fatalw("user lookup failed", "email", u.email, "error", err)
		}
		if emailTaken || usernameTaken {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			zlog.Fatalw("hash password failed", "error", err)
		}
		user := &domain.User{
			Email:        u.email,
			Username:     u.username,
			FirstName:    u.first,
			LastName:     u.last,
			PasswordHash: string(hash),
			IsStaff:      u.staff,
		}
		if err := users.Create(ctx, user); err != nil {
			zlog.Fatalw("create user failed", "email", u.email, "error", err)
		}
		zlog.Infow("user created", "email", u.email, "password", u.password)
		created++
	}

	zlog.Infow("seed completed", "tags", tags, "ingredients", products, "users", created)
}
