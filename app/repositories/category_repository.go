package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/slug"
)

type categoryRepo struct {
	col *mongo.Collection
}

// NewCategoryRepository builds a CategoryRepository over the categories
// collection.
func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &categoryRepo{col: db.Collection("categories")}
}

// Create derives the slug from name at write time; a name that normalises
// to an existing slug is a conflict.
func (r *categoryRepo) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Required("name")
	}

	c := models.Category{Name: name, Slug: slug.Make(name)}

	res, err := r.col.InsertOne(ctx, &c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("slug %q: %w", c.Slug, apperr.ErrConflict)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	c.ID = res.InsertedID.(primitive.ObjectID)
	return &c, nil
}

// Update recomputes the slug from the new name.
func (r *categoryRepo) Update(ctx context.Context, id primitive.ObjectID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Required("name")
	}

	update := bson.M{"$set": bson.M{"name": name, "slug": slug.Make(name)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.Category
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("slug %q: %w", slug.Make(name), apperr.ErrConflict)
		}
		return nil, fmt.Errorf("update category %s: %w", id.Hex(), err)
	}
	return &c, nil
}

func (r *categoryRepo) All(ctx context.Context) ([]models.Category, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cur.Close(ctx)

	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepo) FindBySlug(ctx context.Context, s string) (*models.Category, error) {
	var c models.Category
	err := r.col.FindOne(ctx, bson.M{"slug": s}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find category %q: %w", s, err)
	}
	return &c, nil
}

// Delete removes the category only. Products keep their (now dangling)
// category reference; reads tolerate a missing category.
func (r *categoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
