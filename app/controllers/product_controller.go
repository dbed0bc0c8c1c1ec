package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/bind"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

// multipartMemory is how much of a multipart body is held in memory while
// parsing; larger parts spill to temp files.
const multipartMemory = 8 << 20

// ProductController serves the product catalogue: admin CRUD with inline
// photos, the public browse/search/filter endpoints, and checkout.
type ProductController struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	checkout   *services.CheckoutService
}

func NewProductController(products repositories.ProductRepository, categories repositories.CategoryRepository, checkout *services.CheckoutService) *ProductController {
	return &ProductController{products: products, categories: categories, checkout: checkout}
}

// productFromForm builds a Product from a multipart form. Field-level
// validation happens in the repository; this only converts types.
func productFromForm(r *http.Request) (*models.Product, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, apperr.Validation("form", "invalid multipart form")
	}

	p := &models.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.Validation("price", "must be a number")
		}
		p.Price = price
	}
	if raw := r.FormValue("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.Validation("quantity", "must be an integer")
		}
		p.Quantity = qty
	}
	if raw := r.FormValue("category"); raw != "" {
		cid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.Validation("category", "must be a valid id")
		}
		p.Category = cid
	}
	if raw := r.FormValue("shipping"); raw != "" {
		p.Shipping = raw == "1" || raw == "true"
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		// Read one byte past the cap so the repository can reject oversize
		// photos with its own message.
		data, err := io.ReadAll(io.LimitReader(file, models.MaxPhotoBytes+1))
		if err != nil {
			return nil, apperr.Validation("photo", "could not read photo")
		}
		p.Photo = models.Photo{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		}
	}

	return p, nil
}

// Create handles POST /product/create-product (multipart).
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	p, err := productFromForm(r)
	if err != nil {
		response.FromError(w, "Error while creating product", err)
		return
	}

	if err := c.products.Create(r.Context(), p); err != nil {
		response.FromError(w, "Error while creating product", err)
		return
	}
	response.Created(w, "Product created", p)
}

// Update handles PUT /product/update-product/{id} (multipart). A request
// without a photo part keeps the stored photo.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := productFromForm(r)
	if err != nil {
		response.FromError(w, "Error while updating product", err)
		return
	}
	p.ID = id

	if err := c.products.Update(r.Context(), p); err != nil {
		response.FromError(w, "Error while updating product", err)
		return
	}
	response.Success(w, "Product updated", p)
}

// Delete handles DELETE /product/delete-product/{id}.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := c.products.Delete(r.Context(), id); err != nil {
		response.FromError(w, "Error while deleting product", err)
		return
	}
	response.Success(w, "Product deleted", nil)
}

// All handles GET /product/get-product: the newest products, photo
// excluded, capped at the default list limit.
func (c *ProductController) All(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.All(r.Context(), repositories.DefaultListLimit)
	if err != nil {
		response.FromError(w, "Error while getting products", err)
		return
	}
	response.Success(w, "All products", map[string]interface{}{
		"counTotal": len(products),
		"products":  products,
	})
}

// Single handles GET /product/get-product/{slug}.
func (c *ProductController) Single(w http.ResponseWriter, r *http.Request) {
	p, err := c.products.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, "Error while getting product", err)
		return
	}
	response.Success(w, "Product fetched", p)
}

// Photo handles GET /product/product-photo/{id}: raw image bytes with
// the stored content type, not the JSON envelope.
func (c *ProductController) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	photo, err := c.products.Photo(r.Context(), id)
	if err != nil {
		response.FromError(w, "Error while getting photo", err)
		return
	}
	if len(photo.Data) == 0 {
		response.Fail(w, http.StatusNotFound, "Photo not found")
		return
	}

	ct := photo.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Write(photo.Data) //nolint:errcheck
}

type filterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

// Filter handles POST /product/product-filters: category-set membership
// AND inclusive price range, both optional.
func (c *ProductController) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if _, err := bind.JSON(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var f repositories.ProductFilter
	for _, raw := range req.Checked {
		cid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			response.Fail(w, http.StatusBadRequest, "Invalid category id in filter")
			return
		}
		f.Categories = append(f.Categories, cid)
	}
	if len(req.Radio) == 2 {
		f.PriceMin, f.PriceMax = &req.Radio[0], &req.Radio[1]
	}

	products, err := c.products.Filter(r.Context(), f)
	if err != nil {
		response.FromError(w, "Error while filtering products", err)
		return
	}
	response.Success(w, "Filtered products", products)
}

// Count handles GET /product/product-count, used to size the pagination
// widget.
func (c *ProductController) Count(w http.ResponseWriter, r *http.Request) {
	total, err := c.products.Count(r.Context())
	if err != nil {
		response.FromError(w, "Error while counting products", err)
		return
	}
	response.Success(w, "Product count", map[string]int64{"total": total})
}

// List handles GET /product/product-list/{page}: fixed-size pages,
// newest first, 1-indexed.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		page = 1
	}

	products, err := c.products.Page(r.Context(), page)
	if err != nil {
		response.FromError(w, "Error while listing products", err)
		return
	}
	response.Success(w, "Product page", products)
}

// Search handles GET /product/search/{keyword}: case-insensitive
// substring match over name and description.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.Search(r.Context(), chi.URLParam(r, "keyword"))
	if err != nil {
		response.FromError(w, "Error while searching products", err)
		return
	}
	response.Success(w, "Search results", products)
}

// Related handles GET /product/related-product/{pid}/{cid}: up to three
// other products from the same category.
func (c *ProductController) Related(w http.ResponseWriter, r *http.Request) {
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "pid"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "cid"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	products, err := c.products.Related(r.Context(), pid, cid)
	if err != nil {
		response.FromError(w, "Error while getting related products", err)
		return
	}
	response.Success(w, "Related products", products)
}

// ByCategory handles GET /product/product-category/{slug}.
func (c *ProductController) ByCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := c.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, "Error while getting category", err)
		return
	}

	products, err := c.products.ByCategory(r.Context(), cat.ID)
	if err != nil {
		response.FromError(w, "Error while getting products", err)
		return
	}
	response.Success(w, "Category products", map[string]interface{}{
		"category": cat,
		"products": products,
	})
}

// BraintreeToken handles GET /product/braintree/token.
func (c *ProductController) BraintreeToken(w http.ResponseWriter, r *http.Request) {
	token, err := c.checkout.ClientToken(r.Context())
	if err != nil {
		response.FromError(w, "Error while generating payment token", err)
		return
	}
	response.Success(w, "Client token", map[string]string{"clientToken": token})
}

type paymentRequest struct {
	Nonce string `json:"nonce"`
	Cart  []struct {
		ID string `json:"_id"`
	} `json:"cart"`
}

// BraintreePayment handles POST /product/braintree/payment for the
// signed-in buyer. The charge happens before the order is written.
func (c *ProductController) BraintreePayment(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "missing claims")
		return
	}

	var req paymentRequest
	if _, err := bind.JSON(r, &req); err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.Cart))
	for _, item := range req.Cart {
		id, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			response.Fail(w, http.StatusBadRequest, "Invalid product id in cart")
			return
		}
		ids = append(ids, id)
	}

	order, err := c.checkout.Capture(r.Context(), buyer, req.Nonce, ids)
	if err != nil {
		response.FromError(w, "Error while processing payment", err)
		return
	}
	response.Success(w, "Payment completed", order)
}
