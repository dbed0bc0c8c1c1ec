// Package routes wires the HTTP surface: every endpoint, its middleware
// chain, and the two operational routes (/health and /metrics).
package routes

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/kirana/app/controllers"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/metrics"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/reqid"
	"github.com/shashiranjanraj/kirana/pkg/response"
	"github.com/shashiranjanraj/kirana/pkg/router"
)

// Deps carries everything the route table needs.
type Deps struct {
	Auth     *controllers.AuthController
	Category *controllers.CategoryController
	Product  *controllers.ProductController
	Users    repositories.UserRepository
	Redis    *redis.Client
}

// Register builds the full route table on r. All API routes live under
// /api/v1; the auth endpoints additionally sit behind a rate limit.
func Register(r *router.Router, d Deps) {
	r.Use(reqid.Middleware(), middleware.Logger, middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()), metrics.Middleware())

	signIn := middleware.RequireSignIn
	admin := middleware.RequireAdmin(d.Users)
	authLimit := middleware.RateLimit(d.Redis, 20, time.Minute)

	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, "ok", nil)
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", d.Auth.Register, authLimit)
	auth.Post("/login", "auth.login", d.Auth.Login, authLimit)
	auth.Post("/forgot-password", "auth.forgot-password", d.Auth.ForgotPassword, authLimit)
	auth.Get("/test", "auth.test", d.Auth.Test, signIn, admin)
	auth.Get("/user-auth", "auth.user-auth", d.Auth.CheckAuth, signIn)
	auth.Get("/admin-auth", "auth.admin-auth", d.Auth.CheckAuth, signIn, admin)
	auth.Put("/profile", "auth.profile", d.Auth.UpdateProfile, signIn)
	auth.Get("/orders", "auth.orders", d.Auth.Orders, signIn)
	auth.Get("/all-orders", "auth.all-orders", d.Auth.AllOrders, signIn, admin)
	auth.Put("/status-update/{orderId}", "auth.status-update", d.Auth.UpdateOrderStatus, signIn, admin)

	category := api.Group("/category")
	category.Post("/create-category", "category.create", d.Category.Create, signIn, admin)
	category.Put("/update-category/{id}", "category.update", d.Category.Update, signIn, admin)
	category.Get("/get-category", "category.all", d.Category.All)
	category.Get("/single-category/{slug}", "category.single", d.Category.Single)
	category.Delete("/delete-category/{id}", "category.delete", d.Category.Delete, signIn, admin)

	product := api.Group("/product")
	product.Post("/create-product", "product.create", d.Product.Create, signIn, admin)
	product.Put("/update-product/{id}", "product.update", d.Product.Update, signIn, admin)
	product.Delete("/delete-product/{id}", "product.delete", d.Product.Delete, signIn, admin)
	product.Get("/get-product", "product.all", d.Product.All)
	product.Get("/get-product/{slug}", "product.single", d.Product.Single)
	product.Get("/product-photo/{id}", "product.photo", d.Product.Photo)
	product.Post("/product-filters", "product.filters", d.Product.Filter)
	product.Get("/product-count", "product.count", d.Product.Count)
	product.Get("/product-list/{page}", "product.list", d.Product.List)
	product.Get("/search/{keyword}", "product.search", d.Product.Search)
	product.Get("/related-product/{pid}/{cid}", "product.related", d.Product.Related)
	product.Get("/single-category-products/{slug}", "product.by-category", d.Product.ByCategory)
	product.Get("/braintree/token", "product.braintree-token", d.Product.BraintreeToken)
	product.Post("/braintree/payment", "product.braintree-payment", d.Product.BraintreePayment, signIn)
}
