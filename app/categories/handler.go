package categories

import (
	"context"
	"net/http"
	"strings"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/serializers"
)

type CategoryProvider interface {
	GetAllCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, category *models.Category) error
}

// ProductLister returns the products filed under a category.
type ProductLister interface {
	GetByCategorySlug(ctx context.Context, slug string, activeOnly bool) ([]models.Product, error)
}

type CategoryHandler struct {
	repo     CategoryProvider
	products ProductLister
}

func NewCategoryHandler(r CategoryProvider, p ProductLister) *CategoryHandler {
	return &CategoryHandler{repo: r, products: p}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context(), !api.BoolQuery(r, "all", false))
	if err != nil {
		api.StoreError(w, r, err, "Categories not found", "failed to fetch categories")
		return
	}

	api.OKResponse(w, http.StatusOK, serializers.NewCategories(categories))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		IsActive bool   `json:"is_active"`
		Parent   string `json:"parent"`
	}

	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	category := &models.Category{
		Name:     strings.TrimSpace(input.Name),
		Slug:     strings.TrimSpace(input.Slug),
		IsActive: input.IsActive,
	}

	if input.Parent != "" {
		parent, err := h.repo.GetBySlug(r.Context(), input.Parent)
		if err != nil {
			api.StoreError(w, r, err, "Parent category not found", "Failed to create category")
			return
		}
		category.ParentID = &parent.ID
	}

	if err := category.Validate(); err != nil {
		api.StoreError(w, r, err, "Category not found", "Failed to create category")
		return
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		api.StoreError(w, r, err, "Category not found", "Failed to create category")
		return
	}

	api.OKResponse(w, http.StatusCreated, map[string]string{
		"message": "Category created successfully",
	})
}

// HandleDelete removes a category unless children or products still reference it.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	category, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.StoreError(w, r, err, "Category not found", "Failed to delete category")
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), category); err != nil {
		api.StoreError(w, r, err, "Category not found", "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetProducts lists the active products of one category in the category view.
func (h *CategoryHandler) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetByCategorySlug(r.Context(), r.PathValue("slug"), true)
	if err != nil {
		api.StoreError(w, r, err, "Category not found", "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, serializers.NewProductCategories(products))
}
