package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
)

type orderRepo struct {
	col *mongo.Collection
}

// NewOrderRepository builds an OrderRepository over the orders collection.
func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepo{col: db.Collection("orders")}
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	if o.Buyer.IsZero() {
		return apperr.Required("buyer")
	}
	if len(o.Products) == 0 {
		return apperr.Required("products")
	}
	if !o.Status.Valid() {
		o.Status = models.StatusNotProcessed
	}

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *orderRepo) ByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"buyer": buyer})
}

func (r *orderRepo) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

// UpdateStatus mutates only the fulfilment status; callers must have
// verified the order exists, but the write re-checks anyway.
func (r *orderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status", "is not a valid order status")
	}

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("update order status %s: %w", id.Hex(), err)
	}
	return &o, nil
}

func (r *orderRepo) find(ctx context.Context, query bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
