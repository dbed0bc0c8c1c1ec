package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
)

type userRepo struct {
	col *mongo.Collection
}

// NewUserRepository builds a UserRepository over the users collection.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepo{col: db.Collection("users")}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Required("name")
	}
	if strings.TrimSpace(u.Email) == "" {
		return apperr.Required("email")
	}
	if u.Password == "" {
		return apperr.Required("password")
	}
	if !u.Role.Valid() {
		u.Role = models.RoleUser
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		return apperr.Required("_id")
	}
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Required("name")
	}

	u.UpdatedAt = time.Now()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("update user %s: %w", u.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
