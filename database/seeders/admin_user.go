package seeders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/config"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

func init() {
	Register("admin-user", SeedAdminUser)
}

// SeedAdminUser creates the initial admin account if no user holds the
// configured admin email. Credentials come from ADMIN_EMAIL and
// ADMIN_PASSWORD; the seeder is a no-op when the account already exists.
func SeedAdminUser(ctx context.Context, db *mongo.Database) error {
	email := config.Get("ADMIN_EMAIL", "admin@kirana.local")
	password := config.Get("ADMIN_PASSWORD", "admin123")

	col := db.Collection("users")
	err := col.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = col.InsertOne(ctx, models.User{
		Name:      "Administrator",
		Email:     email,
		Password:  digest,
		Phone:     "0000000000",
		Address:   "Head Office",
		Answer:    "seeded",
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
