package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups products. Slug is derived from Name at write time and is
// unique; deleting a category does not touch the products referencing it.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name" validate:"required,max=255"`
	Slug string             `bson:"slug" json:"slug"`
}
