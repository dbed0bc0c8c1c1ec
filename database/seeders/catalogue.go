package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
)

func init() {
	Register("catalogue", SeedCatalogue)
}

// SeedCatalogue inserts a small demo catalogue for local development.
// It skips entirely when any category already exists.
func SeedCatalogue(ctx context.Context, db *mongo.Database) error {
	n, err := db.Collection("categories").CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	categories := repositories.NewCategoryRepository(db)
	products := repositories.NewProductRepository(db)

	demo := map[string][]models.Product{
		"Electronics & Gadgets": {
			{Name: "Wireless Mouse", Description: "Compact 2.4 GHz wireless mouse", Price: 19.99, Quantity: 40, Shipping: true},
			{Name: "USB-C Charger", Description: "65W GaN fast charger", Price: 34.50, Quantity: 25, Shipping: true},
		},
		"Groceries": {
			{Name: "Basmati Rice 5kg", Description: "Long-grain aged basmati", Price: 12.00, Quantity: 100},
			{Name: "Toor Dal 1kg", Description: "Unpolished split pigeon peas", Price: 3.25, Quantity: 80},
		},
		"Books": {
			{Name: "The Go Programming Language", Description: "Donovan and Kernighan", Price: 42.00, Quantity: 15, Shipping: true},
		},
	}

	for name, items := range demo {
		cat, err := categories.Create(ctx, name)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].Category = cat.ID
			if err := products.Create(ctx, &items[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
