package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/bind"
	"github.com/shashiranjanraj/kirana/pkg/response"
	"github.com/shashiranjanraj/kirana/pkg/validate"
)

// CategoryController serves the category CRUD. Mutations sit behind the
// admin gate; reads are public.
type CategoryController struct {
	categories repositories.CategoryRepository
}

func NewCategoryController(categories repositories.CategoryRepository) *CategoryController {
	return &CategoryController{categories: categories}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// Create handles POST /category/create-category.
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error while creating category", map[string]string{f: m})
		return
	}

	cat, err := c.categories.Create(r.Context(), req.Name)
	if err != nil {
		response.FromError(w, "Error while creating category", err)
		return
	}
	response.Created(w, "Category created", cat)
}

// Update handles PUT /category/update-category/{id}. The slug is
// re-derived from the new name.
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var req categoryRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		f, m := validate.First(errs)
		response.FailWith(w, http.StatusBadRequest, "Error while updating category", map[string]string{f: m})
		return
	}

	cat, err := c.categories.Update(r.Context(), id, req.Name)
	if err != nil {
		response.FromError(w, "Error while updating category", err)
		return
	}
	response.Success(w, "Category updated", cat)
}

// All handles GET /category/get-category.
func (c *CategoryController) All(w http.ResponseWriter, r *http.Request) {
	cats, err := c.categories.All(r.Context())
	if err != nil {
		response.FromError(w, "Error while getting categories", err)
		return
	}
	response.Success(w, "All categories", cats)
}

// Single handles GET /category/single-category/{slug}.
func (c *CategoryController) Single(w http.ResponseWriter, r *http.Request) {
	cat, err := c.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, "Error while getting category", err)
		return
	}
	response.Success(w, "Category fetched", cat)
}

// Delete handles DELETE /category/delete-category/{id}. Products that
// reference the category keep their dangling reference.
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := c.categories.Delete(r.Context(), id); err != nil {
		response.FromError(w, "Error while deleting category", err)
		return
	}
	response.Success(w, "Category deleted", nil)
}
