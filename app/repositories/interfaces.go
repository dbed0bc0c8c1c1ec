// Package repositories implements the persistence contracts for the core
// entities against MongoDB. Each repository enforces its entity's
// invariants — required fields, non-negative numerics, uniqueness — before
// any write reaches the store.
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
)

// UserRepository handles persistence for User.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// CategoryRepository handles persistence for Category.
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, name string) (*models.Category, error)
	All(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter is the conjunctive product filter: category-set membership
// AND an inclusive price range. A nil/empty field is not applied.
type ProductFilter struct {
	Categories []primitive.ObjectID
	PriceMin   *float64
	PriceMax   *float64
}

// ProductRepository handles persistence and queries for Product. Read
// methods never return the photo payload; Photo fetches it separately.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error)
	All(ctx context.Context, limit int) ([]models.Product, error)
	Page(ctx context.Context, page int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Filter(ctx context.Context, f ProductFilter) ([]models.Product, error)
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	Related(ctx context.Context, productID, categoryID primitive.ObjectID) ([]models.Product, error)
	ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error)
}

// OrderRepository handles persistence for Order.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}
