package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPhotoBytes caps the inline photo payload. Oversized uploads are
// rejected before anything is written.
const MaxPhotoBytes = 1 << 20 // 1 MB

// Photo is the optional inline image payload of a product. It is excluded
// from list and detail responses (bson projection) and served raw by the
// product-photo endpoint.
type Photo struct {
	Data        []byte `bson:"data,omitempty" json:"-"`
	ContentType string `bson:"contentType,omitempty" json:"-"`
}

// Product is a catalogue entry. Slug is derived from Name and unique;
// Category is a weak reference — the category may have been deleted.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name" validate:"required,max=255"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Price       float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Quantity    int                `bson:"quantity" json:"quantity" validate:"gte=0"`
	Shipping    bool               `bson:"shipping" json:"shipping"`
	Photo       Photo              `bson:"photo,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasPhoto reports whether a photo payload is stored for the product.
func (p *Product) HasPhoto() bool { return len(p.Photo.Data) > 0 }
