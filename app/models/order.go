package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order. The progression is
// ordered; only admins move an order between states.
type OrderStatus string

const (
	StatusNotProcessed OrderStatus = "Not Processed"
	StatusProcessing   OrderStatus = "Processing"
	StatusShipped      OrderStatus = "Shipped"
	StatusDelivered    OrderStatus = "Delivered"
	StatusCancelled    OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the declared statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNotProcessed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Payment records the gateway's confirmation of a charge. An order is only
// ever persisted after the gateway reports success.
type Payment struct {
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	Amount        float64   `bson:"amount" json:"amount"`
	Success       bool      `bson:"success" json:"success"`
	CapturedAt    time.Time `bson:"capturedAt" json:"capturedAt"`
}

// Order snapshots what a buyer purchased in one payment capture.
type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   Payment              `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Total     float64              `bson:"total" json:"total"`
	Status    OrderStatus          `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
