package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/serializers"
	"github.com/shopspring/decimal"
)

type Response struct {
	Total    int                           `json:"total"`
	Products []serializers.ProductCategory `json:"products"`
}

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, product *models.Product) error
	FullCleanProduct(ctx context.Context, product *models.Product) error
	AttachAttributeValue(ctx context.Context, productID, valueID uint) error
	FullCleanAttributeValue(ctx context.Context, productID uint, value models.AttributeValue) error
}

type ProductLineProvider interface {
	GetByID(ctx context.Context, id uint) (*models.ProductLine, error)
	CreateProductLine(ctx context.Context, line *models.ProductLine) error
	FullCleanProductLine(ctx context.Context, line *models.ProductLine) error
	CreateProductImage(ctx context.Context, image *models.ProductImage) error
	FullCleanProductImage(ctx context.Context, image *models.ProductImage) error
	AttachAttributeValue(ctx context.Context, lineID, valueID uint) error
	FullCleanAttributeValue(ctx context.Context, lineID uint, value models.AttributeValue) error
}

type AttributeValueProvider interface {
	GetAttributeValue(ctx context.Context, id uint) (*models.AttributeValue, error)
}

type CatalogHandler struct {
	repo   ProductProvider
	lines  ProductLineProvider
	values AttributeValueProvider
}

func NewCatalogHandler(r ProductProvider, l ProductLineProvider, v AttributeValueProvider) *CatalogHandler {
	return &CatalogHandler{
		repo:   r,
		lines:  l,
		values: v,
	}
}

// HandleGet lists active products in the category view.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	offset, limit := api.Pagination(r)

	filters := models.ProductFilters{
		CategorySlug: r.URL.Query().Get("category"),
		ActiveOnly:   !api.BoolQuery(r, "all", false),
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), offset, limit, filters)
	if err != nil {
		api.StoreError(w, r, err, "Products not found", "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, Response{
		Total:    int(total),
		Products: serializers.NewProductCategories(res),
	})
}

// HandleGetProduct returns one active product with its flattened lines.
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	product, err := h.repo.GetBySlug(r.Context(), slug, true)
	if err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to retrieve product")
		return
	}

	api.OKResponse(w, http.StatusOK, serializers.NewProduct(*product))
}

type createProductInput struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	PID           string `json:"pid"`
	Description   string `json:"description"`
	IsDigital     bool   `json:"is_digital"`
	IsActive      bool   `json:"is_active"`
	CategoryID    uint   `json:"category_id"`
	ProductTypeID uint   `json:"product_type_id"`
}

func (h *CatalogHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input createProductInput
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Slug:          strings.TrimSpace(input.Slug),
		PID:           strings.TrimSpace(input.PID),
		Description:   input.Description,
		IsDigital:     input.IsDigital,
		IsActive:      input.IsActive,
		CategoryID:    input.CategoryID,
		ProductTypeID: input.ProductTypeID,
	}
	if product.PID == "" {
		product.PID = models.NewPID()
	}

	if err := h.repo.FullCleanProduct(r.Context(), product); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to create product")
		return
	}
	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to create product")
		return
	}

	api.OKResponse(w, http.StatusCreated, map[string]any{
		"slug": product.Slug,
		"pid":  product.PID,
	})
}

func (h *CatalogHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"), false)
	if err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to delete product")
		return
	}
	if err := h.repo.DeleteProduct(r.Context(), product); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createLineInput struct {
	Price         *decimal.Decimal `json:"price"`
	SKU           string           `json:"sku"`
	StockQty      int              `json:"stock_qty"`
	Order         int              `json:"order"`
	IsActive      bool             `json:"is_active"`
	ProductTypeID uint             `json:"product_type_id"`
}

// HandleCreateLine adds a product line after the full validation pass,
// including the per-product order check.
func (h *CatalogHandler) HandleCreateLine(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"), false)
	if err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to create product line")
		return
	}

	var input createLineInput
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	line := &models.ProductLine{
		SKU:           strings.TrimSpace(input.SKU),
		StockQty:      input.StockQty,
		Order:         input.Order,
		IsActive:      input.IsActive,
		ProductID:     product.ID,
		ProductTypeID: input.ProductTypeID,
	}
	if input.Price != nil {
		line.Price = *input.Price
	}
	if line.ProductTypeID == 0 {
		line.ProductTypeID = product.ProductTypeID
	}

	err = h.lines.FullCleanProductLine(r.Context(), line)
	if input.Price == nil {
		err = models.JoinValidation(models.MissingFields("price"), err)
	}
	if err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to create product line")
		return
	}
	if err := h.lines.CreateProductLine(r.Context(), line); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to create product line")
		return
	}

	api.OKResponse(w, http.StatusCreated, map[string]any{"id": line.ID, "sku": line.SKU})
}

type createImageInput struct {
	AlternativeText string `json:"alternative_text"`
	URL             string `json:"url"`
	Order           int    `json:"order"`
}

func (h *CatalogHandler) HandleCreateImage(w http.ResponseWriter, r *http.Request) {
	lineID := api.PathID(r, "id")
	if lineID == 0 {
		api.ErrorResponseWithStatus(w, http.StatusNotFound, "Product line not found")
		return
	}
	line, err := h.lines.GetByID(r.Context(), lineID)
	if err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to create image")
		return
	}

	var input createImageInput
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	image := &models.ProductImage{
		AlternativeText: strings.TrimSpace(input.AlternativeText),
		URL:             strings.TrimSpace(input.URL),
		Order:           input.Order,
		ProductLineID:   line.ID,
	}
	if err := h.lines.FullCleanProductImage(r.Context(), image); err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to create image")
		return
	}
	if err := h.lines.CreateProductImage(r.Context(), image); err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to create image")
		return
	}

	api.OKResponse(w, http.StatusCreated, serializers.NewProductImages([]models.ProductImage{*image})[0])
}

type attachValueInput struct {
	AttributeValueID uint `json:"attribute_value_id"`
}

// HandleAttachLineValue links an attribute value to a product line,
// rejecting a second value of an attribute the line already carries.
func (h *CatalogHandler) HandleAttachLineValue(w http.ResponseWriter, r *http.Request) {
	lineID := api.PathID(r, "id")
	if lineID == 0 {
		api.ErrorResponseWithStatus(w, http.StatusNotFound, "Product line not found")
		return
	}
	line, err := h.lines.GetByID(r.Context(), lineID)
	if err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to attach attribute value")
		return
	}

	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	if err := h.lines.FullCleanAttributeValue(r.Context(), line.ID, *value); err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to attach attribute value")
		return
	}
	if err := h.lines.AttachAttributeValue(r.Context(), line.ID, value.ID); err != nil {
		api.StoreError(w, r, err, "Product line not found", "Failed to attach attribute value")
		return
	}

	api.OKResponse(w, http.StatusCreated, serializers.NewAttributeValue(*value))
}

// HandleAttachProductValue links an attribute value to a product.
func (h *CatalogHandler) HandleAttachProductValue(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"), false)
	if err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to attach attribute value")
		return
	}

	value, ok := h.decodeValue(w, r)
	if !ok {
		return
	}

	if err := h.repo.FullCleanAttributeValue(r.Context(), product.ID, *value); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to attach attribute value")
		return
	}
	if err := h.repo.AttachAttributeValue(r.Context(), product.ID, value.ID); err != nil {
		api.StoreError(w, r, err, "Product not found", "Failed to attach attribute value")
		return
	}

	api.OKResponse(w, http.StatusCreated, serializers.NewAttributeValue(*value))
}

func (h *CatalogHandler) decodeValue(w http.ResponseWriter, r *http.Request) (*models.AttributeValue, bool) {
	var input attachValueInput
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if input.AttributeValueID == 0 {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Missing attribute_value_id")
		return nil, false
	}

	value, err := h.values.GetAttributeValue(r.Context(), input.AttributeValueID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Unknown attribute value")
			return nil, false
		}
		api.StoreError(w, r, err, "Unknown attribute value", "Failed to load attribute value")
		return nil, false
	}
	return value, true
}
