package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/metrics"
	"github.com/shashiranjanraj/kirana/pkg/payment"
)

// CheckoutService captures payments and records the resulting orders.
// The gateway charge always happens before the order is persisted; a
// declined or failed charge leaves no order behind.
type CheckoutService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	gateway  payment.Gateway
}

func NewCheckoutService(products repositories.ProductRepository, orders repositories.OrderRepository, gateway payment.Gateway) *CheckoutService {
	return &CheckoutService{products: products, orders: orders, gateway: gateway}
}

// ClientToken returns a gateway token for the storefront to initialise
// its payment widget.
func (s *CheckoutService) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Capture charges the buyer for the given cart and persists the order.
// The total is computed from the stored product prices, never from the
// request payload.
func (s *CheckoutService) Capture(ctx context.Context, buyer primitive.ObjectID, nonce string, productIDs []primitive.ObjectID) (*models.Order, error) {
	if nonce == "" {
		return nil, apperr.Required("nonce")
	}
	if len(productIDs) == 0 {
		return nil, apperr.Required("cart")
	}

	var total float64
	for _, id := range productIDs {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("cart product %s: %w", id.Hex(), err)
		}
		total += p.Price
	}

	charge, err := s.gateway.Sale(ctx, total, nonce)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if charge.TransactionID == "" {
		metrics.PaymentsTotal.WithLabelValues("declined").Inc()
		return nil, fmt.Errorf("payment declined: %w", apperr.ErrCollaborator)
	}
	metrics.PaymentsTotal.WithLabelValues("success").Inc()

	order := &models.Order{
		Products: productIDs,
		Payment: models.Payment{
			TransactionID: charge.TransactionID,
			Amount:        charge.Amount,
			Success:       true,
			CapturedAt:    time.Now().UTC(),
		},
		Buyer:  buyer,
		Total:  total,
		Status: models.StatusNotProcessed,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		logger.WithCtx(ctx).Error("order persist failed after successful charge",
			"transaction_id", charge.TransactionID, "buyer", buyer.Hex(), "error", err)
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	return order, nil
}
