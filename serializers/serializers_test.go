package serializers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mytheresa/catalog-service/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	color  = models.Attribute{ID: 1, Name: "color"}
	size   = models.Attribute{ID: 2, Name: "size"}
	fabric = models.Attribute{ID: 3, Name: "fabric"}
)

func value(id uint, attr models.Attribute, v string) models.AttributeValue {
	return models.AttributeValue{ID: id, AttributeValue: v, AttributeID: attr.ID, Attribute: attr}
}

func testProduct() models.Product {
	return models.Product{
		Name:        "Runner",
		Slug:        "runner",
		PID:         "PID0000001",
		Description: "A shoe",
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ProductLines: []models.ProductLine{
			{
				Price:    decimal.RequireFromString("19.9"),
				SKU:      "RUN-RED-S",
				StockQty: 4,
				Order:    1,
				ProductImages: []models.ProductImage{
					{AlternativeText: "front", URL: "https://img/front.png", Order: 1},
					{AlternativeText: "back", URL: "https://img/back.png", Order: 2},
				},
				AttributeValues: []models.AttributeValue{value(10, color, "red"), value(20, size, "S")},
			},
			{
				Price:           decimal.RequireFromString("21.50"),
				SKU:             "RUN-BLU-M",
				StockQty:        0,
				Order:           2,
				AttributeValues: []models.AttributeValue{value(11, color, "blue")},
			},
		},
		AttributeValues: []models.AttributeValue{value(30, fabric, "mesh")},
	}
}

func TestFlatten(t *testing.T) {
	testCases := []struct {
		name   string
		values []models.AttributeValue
		want   map[string]string
	}{
		{name: "Empty", values: nil, want: map[string]string{}},
		{
			name:   "Distinct attributes",
			values: []models.AttributeValue{value(1, color, "red"), value(2, size, "M")},
			want:   map[string]string{"color": "red", "size": "M"},
		},
		{
			name:   "Duplicate attribute keeps the last value",
			values: []models.AttributeValue{value(1, color, "red"), value(2, color, "blue")},
			want:   map[string]string{"color": "blue"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Flatten(tc.values))
		})
	}
}

func TestNewProduct(t *testing.T) {
	got := NewProduct(testProduct())

	assert.Equal(t, "Runner", got.Name)
	assert.Equal(t, "runner", got.Slug)
	assert.Equal(t, "PID0000001", got.PID)
	assert.Equal(t, "A shoe", got.Description)
	assert.Equal(t, map[string]string{"fabric": "mesh"}, got.Attribute)

	require.Len(t, got.ProductLine, 2)
	first := got.ProductLine[0]
	assert.Equal(t, "19.90", first.Price)
	assert.Equal(t, "RUN-RED-S", first.SKU)
	assert.Equal(t, 4, first.StockQty)
	assert.Equal(t, map[string]string{"color": "red", "size": "S"}, first.Specification)
	assert.Equal(t, []ProductImage{
		{AlternativeText: "front", URL: "https://img/front.png", Order: 1},
		{AlternativeText: "back", URL: "https://img/back.png", Order: 2},
	}, first.ProductImage)

	second := got.ProductLine[1]
	assert.Equal(t, "21.50", second.Price)
	assert.Empty(t, second.ProductImage)
	assert.Equal(t, map[string]string{"color": "blue"}, second.Specification)
}

func TestNewProductJSON(t *testing.T) {
	p := testProduct()
	p.ProductLines = p.ProductLines[1:]

	raw, err := json.Marshal(NewProduct(p))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.ElementsMatch(t,
		[]string{"name", "slug", "pid", "description", "product_line", "attribute"},
		keys(got))
	assert.NotContains(t, got, "attribute_value")

	lines := got["product_line"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.ElementsMatch(t,
		[]string{"price", "sku", "stock_qty", "order", "product_image", "specification"},
		keys(line))
	assert.Equal(t, "21.50", line["price"])
	assert.Equal(t, []any{}, line["product_image"])
	assert.Equal(t, map[string]any{"color": "blue"}, line["specification"])
}

func TestNewProductCategory(t *testing.T) {
	t.Run("Promotes first line price and images", func(t *testing.T) {
		raw, err := json.Marshal(NewProductCategory(testProduct()))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.ElementsMatch(t, []string{"name", "slug", "pid", "created_at", "price", "image"}, keys(got))
		assert.Equal(t, "19.90", got["price"])
		assert.Len(t, got["image"], 2)
		assert.Equal(t, "2024-05-01T12:00:00Z", got["created_at"])
	})

	t.Run("No product lines omits price and image", func(t *testing.T) {
		p := testProduct()
		p.ProductLines = nil

		raw, err := json.Marshal(NewProductCategory(p))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.ElementsMatch(t, []string{"name", "slug", "pid", "created_at"}, keys(got))
	})

	t.Run("First line without images keeps an empty image list", func(t *testing.T) {
		p := testProduct()
		p.ProductLines = p.ProductLines[1:]

		raw, err := json.Marshal(NewProductCategory(p))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "21.50", got["price"])
		assert.Equal(t, []any{}, got["image"])
	})
}

func TestNewCategories(t *testing.T) {
	got := NewCategories([]models.Category{
		{Name: "Shoes", Slug: "shoes", IsActive: true},
		{Name: "Bags", Slug: "bags"},
	})
	assert.Equal(t, []Category{
		{Category: "Shoes", Slug: "shoes"},
		{Category: "Bags", Slug: "bags"},
	}, got)

	raw, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Shoes","slug":"shoes"}`, string(raw))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "10.00", FormatPrice(decimal.NewFromInt(10)))
	assert.Equal(t, "0.00", FormatPrice(decimal.Decimal{}))
	assert.Equal(t, "999.99", FormatPrice(decimal.RequireFromString("999.99")))
}

func TestNewAttributeValueAndTypes(t *testing.T) {
	av := NewAttributeValue(value(5, color, "red"))
	assert.Equal(t, AttributeValue{ID: 5, Attribute: Attribute{ID: 1, Name: "color"}, AttributeValue: "red"}, av)

	types := NewProductTypes([]models.ProductType{{ID: 1, Name: "shoe", Attributes: []models.Attribute{color, size}}})
	require.Len(t, types, 1)
	assert.Len(t, types[0].Attributes, 2)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
