package attributes

import (
	"context"
	"net/http"
	"strings"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/models"
	"github.com/mytheresa/catalog-service/serializers"
)

type AttributeProvider interface {
	GetAllAttributes(ctx context.Context) ([]models.Attribute, error)
	GetAttribute(ctx context.Context, id uint) (*models.Attribute, error)
	CreateAttribute(ctx context.Context, attribute *models.Attribute) error
	GetValuesByAttribute(ctx context.Context, attributeID uint) ([]models.AttributeValue, error)
	CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error
}

type ProductTypeProvider interface {
	GetAllProductTypes(ctx context.Context) ([]models.ProductType, error)
	CreateProductType(ctx context.Context, pt *models.ProductType) error
	DeleteProductType(ctx context.Context, id uint) error
}

type AttributeHandler struct {
	repo  AttributeProvider
	types ProductTypeProvider
}

func NewAttributeHandler(r AttributeProvider, t ProductTypeProvider) *AttributeHandler {
	return &AttributeHandler{repo: r, types: t}
}

func (h *AttributeHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	attributes, err := h.repo.GetAllAttributes(r.Context())
	if err != nil {
		api.StoreError(w, r, err, "Attributes not found", "failed to fetch attributes")
		return
	}
	api.OKResponse(w, http.StatusOK, serializers.NewAttributes(attributes))
}

func (h *AttributeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	attribute := &models.Attribute{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	if err := attribute.Validate(); err != nil {
		api.StoreError(w, r, err, "Attribute not found", "Failed to create attribute")
		return
	}
	if err := h.repo.CreateAttribute(r.Context(), attribute); err != nil {
		api.StoreError(w, r, err, "Attribute not found", "Failed to create attribute")
		return
	}

	api.OKResponse(w, http.StatusCreated, serializers.NewAttribute(*attribute))
}

func (h *AttributeHandler) HandleGetValues(w http.ResponseWriter, r *http.Request) {
	attribute, ok := h.attribute(w, r, "failed to fetch attribute values")
	if !ok {
		return
	}
	values, err := h.repo.GetValuesByAttribute(r.Context(), attribute.ID)
	if err != nil {
		api.StoreError(w, r, err, "Attribute not found", "failed to fetch attribute values")
		return
	}

	out := make([]serializers.AttributeValue, len(values))
	for i, v := range values {
		out[i] = serializers.NewAttributeValue(v)
	}
	api.OKResponse(w, http.StatusOK, out)
}

func (h *AttributeHandler) HandleCreateValue(w http.ResponseWriter, r *http.Request) {
	attribute, ok := h.attribute(w, r, "Failed to create attribute value")
	if !ok {
		return
	}

	var input struct {
		AttributeValue string `json:"attribute_value"`
	}
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	value := &models.AttributeValue{
		AttributeValue: strings.TrimSpace(input.AttributeValue),
		AttributeID:    attribute.ID,
		Attribute:      *attribute,
	}
	if err := value.Validate(); err != nil {
		api.StoreError(w, r, err, "Attribute not found", "Failed to create attribute value")
		return
	}
	if err := h.repo.CreateAttributeValue(r.Context(), value); err != nil {
		api.StoreError(w, r, err, "Attribute not found", "Failed to create attribute value")
		return
	}

	api.OKResponse(w, http.StatusCreated, serializers.NewAttributeValue(*value))
}

func (h *AttributeHandler) attribute(w http.ResponseWriter, r *http.Request, fallback string) (*models.Attribute, bool) {
	id := api.PathID(r, "id")
	if id == 0 {
		api.ErrorResponseWithStatus(w, http.StatusNotFound, "Attribute not found")
		return nil, false
	}
	attribute, err := h.repo.GetAttribute(r.Context(), id)
	if err != nil {
		api.StoreError(w, r, err, "Attribute not found", fallback)
		return nil, false
	}
	return attribute, true
}

func (h *AttributeHandler) HandleGetProductTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.GetAllProductTypes(r.Context())
	if err != nil {
		api.StoreError(w, r, err, "Product types not found", "failed to fetch product types")
		return
	}
	api.OKResponse(w, http.StatusOK, serializers.NewProductTypes(types))
}

// HandleCreateProductType creates a type and links the listed attributes.
// Unknown attribute ids surface as an integrity conflict.
func (h *AttributeHandler) HandleCreateProductType(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string `json:"name"`
		AttributeIDs []uint `json:"attribute_ids"`
	}
	if err := api.DecodeJSON(w, r, &input); err != nil {
		api.ErrorResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	pt := &models.ProductType{Name: strings.TrimSpace(input.Name)}
	for _, id := range input.AttributeIDs {
		pt.Attributes = append(pt.Attributes, models.Attribute{ID: id})
	}
	if err := pt.Validate(); err != nil {
		api.StoreError(w, r, err, "Product type not found", "Failed to create product type")
		return
	}
	if err := h.types.CreateProductType(r.Context(), pt); err != nil {
		api.StoreError(w, r, err, "Product type not found", "Failed to create product type")
		return
	}

	api.OKResponse(w, http.StatusCreated, map[string]any{"id": pt.ID, "name": pt.Name})
}

func (h *AttributeHandler) HandleDeleteProductType(w http.ResponseWriter, r *http.Request) {
	id := api.PathID(r, "id")
	if id == 0 {
		api.ErrorResponseWithStatus(w, http.StatusNotFound, "Product type not found")
		return
	}
	if err := h.types.DeleteProductType(r.Context(), id); err != nil {
		api.StoreError(w, r, err, "Product type not found", "Failed to delete product type")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
