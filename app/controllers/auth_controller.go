// Package controllers contains the HTTP handlers. Controllers decode and
// validate the request, call the service or repository layer, and write the
// JSON envelope; they never touch the database driver directly.
package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/apperr"
	"github.com/shashiranjanraj/kirana/pkg/bind"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/response"
	"github.com/shashiranjanraj/kirana/pkg/validate"
)

// AuthController serves registration, login, password reset, profile
// updates and the order views (a buyer's own orders plus the admin views).
type AuthController struct {
	auth   *services.AuthService
	orders repositories.OrderRepository
}

func NewAuthController(auth *services.AuthService, orders repositories.OrderRepository) *AuthController {
	return &AuthController{auth: auth, orders: orders}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=512"`
	Answer   string `json:"answer" validate:"required,max=255"`
}

// Register handles POST /auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error in registration", map[string]string{f: m})
		return
	}

	u, err := c.auth.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
	})
	if err != nil {
		response.FromError(w, "Error in registration", err)
		return
	}
	response.Created(w, "User registered successfully", u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login. The token is returned alongside the
// user so the storefront can store both.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Invalid email or password", map[string]string{f: m})
		return
	}

	token, u, err := c.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Fail(w, http.StatusUnauthorized, "Invalid password")
		return
	default:
		response.FromError(w, "Email is not registered", err)
		return
	}

	response.Success(w, "Login successful", map[string]interface{}{
		"user":  u,
		"token": token,
	})
}

type forgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPassword handles POST /auth/forgot-password: the stored security
// answer stands in for the old password.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error in password reset", map[string]string{f: m})
		return
	}

	err = c.auth.ForgotPassword(r.Context(), req.Email, req.Answer, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, apperr.ErrNotFound):
		// Same answer for unknown email and wrong answer: no account probing.
		response.Fail(w, http.StatusNotFound, "Wrong email or answer")
		return
	default:
		response.FromError(w, "Error in password reset", err)
		return
	}

	response.Success(w, "Password reset successfully", nil)
}

type profileRequest struct {
	Name     string `json:"name" validate:"nullable,max=255"`
	Password string `json:"password" validate:"nullable,min=6"`
	Phone    string `json:"phone" validate:"nullable,max=32"`
	Address  string `json:"address" validate:"nullable,max=512"`
}

// UpdateProfile handles PUT /auth/profile for the signed-in user.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "missing claims")
		return
	}

	var req profileRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error while updating profile", map[string]string{f: m})
		return
	}

	u, err := c.auth.UpdateProfile(r.Context(), id, services.ProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		response.FromError(w, "Error while updating profile", err)
		return
	}
	response.Success(w, "Profile updated successfully", u)
}

// Test handles GET /auth/test, a plain probe behind both gates.
func (c *AuthController) Test(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "Protected route", nil)
}

// CheckAuth handles GET /auth/user-auth and GET /auth/admin-auth: the
// storefront polls these to decide which dashboard to render. Reaching
// the handler means the gates passed.
func (c *AuthController) CheckAuth(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "ok", map[string]bool{"ok": true})
}

// Orders handles GET /auth/orders: the signed-in buyer's own orders,
// newest first.
func (c *AuthController) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "missing claims")
		return
	}

	orders, err := c.orders.ByBuyer(r.Context(), id)
	if err != nil {
		response.FromError(w, "Error while getting orders", err)
		return
	}
	response.Success(w, "Orders fetched", orders)
}

// AllOrders handles GET /auth/all-orders for admins.
func (c *AuthController) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.All(r.Context())
	if err != nil {
		response.FromError(w, "Error while getting orders", err)
		return
	}
	response.Success(w, "Orders fetched", orders)
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus handles PUT /auth/order-status/{orderId} for admins.
// "Cancel" is accepted as an alias for "Cancelled".
func (c *AuthController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orderId"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req orderStatusRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error while updating order", map[string]string{f: m})
		return
	}

	status := models.OrderStatus(req.Status)
	if req.Status == "Cancel" {
		status = models.StatusCancelled
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		response.FromError(w, "Error while updating order", err)
		return
	}
	response.Success(w, "Order status updated", order)
}
