package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/slug"
)

const (
	// PerPage is the fixed page size of the paginated product list.
	PerPage = 6
	// RelatedLimit caps the related-products result set.
	RelatedLimit = 3
	// DefaultListLimit caps the unpaginated product list.
	DefaultListLimit = 12
)

// noPhoto excludes the binary payload from read paths so list/detail
// responses stay small. The photo has its own endpoint.
var noPhoto = bson.M{"photo": 0}

type productRepo struct {
	col *mongo.Collection
}

// NewProductRepository builds a ProductRepository over the products
// collection.
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepo{col: db.Collection("products")}
}

// validateProduct is the fail-fast field check shared by Create and Update.
func validateProduct(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.Required("name")
	case strings.TrimSpace(p.Description) == "":
		return apperr.Required("description")
	case p.Price < 0:
		return apperr.Validation("price", "must not be negative")
	case p.Category.IsZero():
		return apperr.Required("category")
	case p.Quantity < 0:
		return apperr.Validation("quantity", "must not be negative")
	case len(p.Photo.Data) > models.MaxPhotoBytes:
		return apperr.Validation("photo", "must be less than 1mb")
	}
	return nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	p.Slug = slug.Make(p.Name)
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("slug %q: %w", p.Slug, apperr.ErrConflict)
		}
		return fmt.Errorf("create product: %w", err)
	}

	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		return apperr.Required("_id")
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	p.Slug = slug.Make(p.Name)
	p.UpdatedAt = time.Now()

	set := bson.M{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"quantity":    p.Quantity,
		"shipping":    p.Shipping,
		"updatedAt":   p.UpdatedAt,
	}
	// Only replace the stored photo when a new payload was uploaded.
	if p.HasPhoto() {
		set["photo"] = p.Photo
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("slug %q: %w", p.Slug, apperr.ErrConflict)
		}
		return fmt.Errorf("update product %s: %w", p.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *productRepo) FindBySlug(ctx context.Context, s string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": s})
}

func (r *productRepo) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	opts := options.FindOne().SetProjection(noPhoto)
	err := r.col.FindOne(ctx, filter, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

// Photo fetches only the binary payload and content type of a product.
func (r *productRepo) Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var doc struct {
		Photo models.Photo `bson:"photo"`
	}
	opts := options.FindOne().SetProjection(bson.M{"photo": 1})
	err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find product photo %s: %w", id.Hex(), err)
	}
	if len(doc.Photo.Data) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &doc.Photo, nil
}

func (r *productRepo) All(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetProjection(noPhoto).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

// Page returns one page of the product list: fixed size, 1-indexed,
// newest first.
func (r *productRepo) Page(ctx context.Context, page int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetProjection(noPhoto).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * PerPage)).
		SetLimit(PerPage)
	return r.find(ctx, bson.M{}, opts)
}

// Count is the pagination-independent total, used by clients to compute
// page counts.
func (r *productRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Filter applies category-set membership and the inclusive price range as
// a conjunction.
func (r *productRepo) Filter(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if len(f.Categories) > 0 {
		query["category"] = bson.M{"$in": f.Categories}
	}
	price := bson.M{}
	if f.PriceMin != nil {
		price["$gte"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		price["$lte"] = *f.PriceMax
	}
	if len(price) > 0 {
		query["price"] = price
	}

	opts := options.Find().SetProjection(noPhoto)
	return r.find(ctx, query, opts)
}

// Search matches keyword case-insensitively against name and description.
func (r *productRepo) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	escaped := regexp.QuoteMeta(strings.TrimSpace(keyword))
	if escaped == "" {
		return nil, apperr.Required("keyword")
	}

	pattern := primitive.Regex{Pattern: escaped, Options: "i"}
	query := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}

	opts := options.Find().SetProjection(noPhoto)
	return r.find(ctx, query, opts)
}

// Related returns up to RelatedLimit products sharing the category,
// excluding the product itself.
func (r *productRepo) Related(ctx context.Context, productID, categoryID primitive.ObjectID) ([]models.Product, error) {
	query := bson.M{
		"category": categoryID,
		"_id":      bson.M{"$ne": productID},
	}
	opts := options.Find().SetProjection(noPhoto).SetLimit(RelatedLimit)
	return r.find(ctx, query, opts)
}

func (r *productRepo) ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetProjection(noPhoto)
	return r.find(ctx, bson.M{"category": categoryID}, opts)
}

func (r *productRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
