package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/payment"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[primitive.ObjectID]*models.Product
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p *models.Product) error { return nil }
func (f *fakeProductRepo) Update(ctx context.Context, p *models.Product) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}
func (f *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return nil, apperr.ErrNotFound
}
func (f *fakeProductRepo) Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	return nil, apperr.ErrNotFound
}
func (f *fakeProductRepo) All(ctx context.Context, limit int) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Page(ctx context.Context, page int) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Count(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeProductRepo) Filter(ctx context.Context, fl repositories.ProductFilter) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Related(ctx context.Context, productID, categoryID primitive.ObjectID) ([]models.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	created []*models.Order
	fail    error
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if f.fail != nil {
		return f.fail
	}
	o.ID = primitive.NewObjectID()
	f.created = append(f.created, o)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return nil, apperr.ErrNotFound
}
func (f *fakeOrderRepo) ByBuyer(ctx context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) All(ctx context.Context) ([]models.Order, error) { return nil, nil }
func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	return nil, apperr.ErrNotFound
}

type fakeGateway struct {
	calls   int
	amounts []float64
	fail    error
	txnID   string
}

func (f *fakeGateway) ClientToken(ctx context.Context) (string, error) { return "client-token", nil }

func (f *fakeGateway) Sale(ctx context.Context, amount float64, nonce string) (*payment.Charge, error) {
	f.calls++
	f.amounts = append(f.amounts, amount)
	if f.fail != nil {
		return nil, f.fail
	}
	return &payment.Charge{TransactionID: f.txnID, Amount: amount}, nil
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func newCatalogue() (*fakeProductRepo, []primitive.ObjectID) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	repo := &fakeProductRepo{products: map[primitive.ObjectID]*models.Product{
		a: {ID: a, Name: "Wireless Mouse", Price: 19.99},
		b: {ID: b, Name: "USB-C Charger", Price: 34.50},
	}}
	return repo, []primitive.ObjectID{a, b}
}

func TestCaptureComputesTotalFromStorePrices(t *testing.T) {
	products, ids := newCatalogue()
	orders := &fakeOrderRepo{}
	gw := &fakeGateway{txnID: "txn-1"}
	svc := services.NewCheckoutService(products, orders, gw)

	order, err := svc.Capture(context.Background(), primitive.NewObjectID(), "nonce-abc", ids)
	require.NoError(t, err)

	require.Equal(t, 1, gw.calls)
	assert.InDelta(t, 54.49, gw.amounts[0], 0.001)
	assert.InDelta(t, 54.49, order.Total, 0.001)
	assert.Equal(t, "txn-1", order.Payment.TransactionID)
	assert.True(t, order.Payment.Success)
	assert.Equal(t, models.StatusNotProcessed, order.Status)
	require.Len(t, orders.created, 1)
}

func TestCaptureFailedChargeLeavesNoOrder(t *testing.T) {
	products, ids := newCatalogue()
	orders := &fakeOrderRepo{}
	gw := &fakeGateway{fail: errors.New("card declined")}
	svc := services.NewCheckoutService(products, orders, gw)

	_, err := svc.Capture(context.Background(), primitive.NewObjectID(), "nonce-abc", ids)
	require.Error(t, err)
	assert.Empty(t, orders.created, "failed charge must not persist an order")
}

func TestCaptureUnknownProductChargesNothing(t *testing.T) {
	products, ids := newCatalogue()
	orders := &fakeOrderRepo{}
	gw := &fakeGateway{txnID: "txn-1"}
	svc := services.NewCheckoutService(products, orders, gw)

	bad := append(append([]primitive.ObjectID(nil), ids...), primitive.NewObjectID())
	_, err := svc.Capture(context.Background(), primitive.NewObjectID(), "nonce-abc", bad)

	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, gw.calls, "gateway must not be charged for an unknown product")
	assert.Empty(t, orders.created)
}

func TestCaptureRequiresNonceAndCart(t *testing.T) {
	products, ids := newCatalogue()
	orders := &fakeOrderRepo{}
	gw := &fakeGateway{txnID: "txn-1"}
	svc := services.NewCheckoutService(products, orders, gw)

	_, err := svc.Capture(context.Background(), primitive.NewObjectID(), "", ids)
	assert.True(t, apperr.IsValidation(err), "missing nonce should be a validation error")

	_, err = svc.Capture(context.Background(), primitive.NewObjectID(), "nonce-abc", nil)
	assert.True(t, apperr.IsValidation(err), "empty cart should be a validation error")

	assert.Zero(t, gw.calls)
}

func TestCapturePersistFailureSurfaces(t *testing.T) {
	products, ids := newCatalogue()
	orders := &fakeOrderRepo{fail: errors.New("write concern")}
	gw := &fakeGateway{txnID: "txn-1"}
	svc := services.NewCheckoutService(products, orders, gw)

	_, err := svc.Capture(context.Background(), primitive.NewObjectID(), "nonce-abc", ids)
	require.Error(t, err)
	assert.Equal(t, 1, gw.calls, "charge happens before the persist attempt")
}
