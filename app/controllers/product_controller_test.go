package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/controllers"
	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/auth"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/payment"
	"github.com/shashiranjanraj/kirana/pkg/router"
)

// fakeProductRepo records the queries it receives and serves a fixed set.
type fakeProductRepo struct {
	products   map[primitive.ObjectID]*models.Product
	lastPage   int
	lastFilter repositories.ProductFilter
	created    []*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return apperr.Required("name")
	}
	p.ID = primitive.NewObjectID()
	f.products[p.ID] = p
	f.created = append(f.created, p)
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *models.Product) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.products[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeProductRepo) Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p.Photo, nil
}

func (f *fakeProductRepo) All(ctx context.Context, limit int) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) Page(ctx context.Context, page int) ([]models.Product, error) {
	f.lastPage = page
	return nil, nil
}

func (f *fakeProductRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductRepo) Filter(ctx context.Context, fl repositories.ProductFilter) ([]models.Product, error) {
	f.lastFilter = fl
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
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *models.Order) error {
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

type fakeGateway struct{ txnID string }

func (f *fakeGateway) ClientToken(ctx context.Context) (string, error) { return "client-token", nil }
func (f *fakeGateway) Sale(ctx context.Context, amount float64, nonce string) (*payment.Charge, error) {
	return &payment.Charge{TransactionID: f.txnID, Amount: amount}, nil
}

type productEnv struct {
	products *fakeProductRepo
	orders   *fakeOrderRepo
	handler  http.Handler
}

func newProductEnv() *productEnv {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	orders := &fakeOrderRepo{}
	checkout := services.NewCheckoutService(products, orders, &fakeGateway{txnID: "txn-9"})
	ctrl := controllers.NewProductController(products, categories, checkout)

	r := router.New()
	r.Post("/create-product", "product.create", ctrl.Create)
	r.Get("/product-list/{page}", "product.list", ctrl.List)
	r.Post("/product-filters", "product.filters", ctrl.Filter)
	r.Get("/product-photo/{id}", "product.photo", ctrl.Photo)
	r.Get("/braintree/token", "product.braintree-token", ctrl.BraintreeToken)
	r.Post("/braintree/payment", "product.braintree-payment", ctrl.BraintreePayment, middleware.RequireSignIn)

	return &productEnv{products: products, orders: orders, handler: r.Handler()}
}

func multipartProduct(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateProductMultipart(t *testing.T) {
	env := newProductEnv()

	body, ct := multipartProduct(t, map[string]string{
		"name":        "Wireless Mouse",
		"description": "Compact 2.4 GHz wireless mouse",
		"price":       "19.99",
		"category":    primitive.NewObjectID().Hex(),
		"quantity":    "40",
		"shipping":    "1",
	}, []byte("jpeg-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/create-product", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.products.created, 1)
	p := env.products.created[0]
	assert.InDelta(t, 19.99, p.Price, 0.001)
	assert.True(t, p.Shipping)
	assert.Equal(t, []byte("jpeg-bytes"), p.Photo.Data)
}

func TestCreateProductBadPrice(t *testing.T) {
	env := newProductEnv()

	body, ct := multipartProduct(t, map[string]string{
		"name":  "Broken",
		"price": "not-a-number",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/create-product", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductListBadPageDefaultsToFirst(t *testing.T) {
	env := newProductEnv()

	for _, raw := range []string{"0", "-3", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/product-list/"+raw, nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.products.lastPage, "page param %q", raw)
	}
}

func TestProductFilterParsesRange(t *testing.T) {
	env := newProductEnv()
	cid := primitive.NewObjectID()

	payload := `{"checked":["` + cid.Hex() + `"],"radio":[20,39.99]}`
	req := httptest.NewRequest(http.MethodPost, "/product-filters", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.products.lastFilter.Categories, 1)
	assert.Equal(t, cid, env.products.lastFilter.Categories[0])
	require.NotNil(t, env.products.lastFilter.PriceMin)
	require.NotNil(t, env.products.lastFilter.PriceMax)
	assert.InDelta(t, 20, *env.products.lastFilter.PriceMin, 0.001)
	assert.InDelta(t, 39.99, *env.products.lastFilter.PriceMax, 0.001)
}

func TestProductPhotoServesRawBytes(t *testing.T) {
	env := newProductEnv()
	id := primitive.NewObjectID()
	env.products.products[id] = &models.Product{
		ID:    id,
		Name:  "With Photo",
		Photo: models.Photo{Data: []byte("raw-image"), ContentType: "image/jpeg"},
	}

	req := httptest.NewRequest(http.MethodGet, "/product-photo/"+id.Hex(), nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "raw-image", rec.Body.String())
}

func TestBraintreePaymentRequiresSignIn(t *testing.T) {
	env := newProductEnv()

	req := httptest.NewRequest(http.MethodPost, "/braintree/payment", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBraintreePaymentCreatesOrder(t *testing.T) {
	env := newProductEnv()

	pid := primitive.NewObjectID()
	env.products.products[pid] = &models.Product{ID: pid, Name: "Mouse", Price: 19.99}

	buyer := primitive.NewObjectID()
	token, err := auth.GenerateToken(buyer.Hex(), "user")
	require.NoError(t, err)

	payload := `{"nonce":"fake-nonce","cart":[{"_id":"` + pid.Hex() + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/braintree/payment", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.orders.created, 1)
	order := env.orders.created[0]
	assert.Equal(t, buyer, order.Buyer)
	assert.Equal(t, "txn-9", order.Payment.TransactionID)
	assert.InDelta(t, 19.99, order.Total, 0.001)
}

func TestBraintreeTokenEndpoint(t *testing.T) {
	env := newProductEnv()

	req := httptest.NewRequest(http.MethodGet, "/braintree/token", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envl map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envl))
	data := envl["data"].(map[string]interface{})
	assert.Equal(t, "client-token", data["clientToken"])
}
