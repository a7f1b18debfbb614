// Package serializers turns catalog models into their JSON views.
//
// Attribute values are flattened into a name → value map. A product line's
// values become its "specification"; a product's own values become its
// "attribute". Values are applied in order, so a second value of the same
// attribute overwrites the first.
package serializers

import (
	"time"

	"github.com/mytheresa/catalog-service/models"
	"github.com/shopspring/decimal"
)

// pricePlaces is the number of decimals rendered for prices.
const pricePlaces = models.PriceDecimalPlaces

type Category struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
}

type ProductImage struct {
	AlternativeText string `json:"alternative_text"`
	URL             string `json:"url"`
	Order           int    `json:"order"`
}

type ProductLine struct {
	Price         string            `json:"price"`
	SKU           string            `json:"sku"`
	StockQty      int               `json:"stock_qty"`
	Order         int               `json:"order"`
	ProductImage  []ProductImage    `json:"product_image"`
	Specification map[string]string `json:"specification"`
}

type Product struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	PID         string            `json:"pid"`
	Description string            `json:"description"`
	ProductLine []ProductLine     `json:"product_line"`
	Attribute   map[string]string `json:"attribute"`
}

// ProductCategory is the category-listing view of a product. Price and
// Image come from the first product line and are nil when it has none.
type ProductCategory struct {
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	PID       string          `json:"pid"`
	CreatedAt time.Time       `json:"created_at"`
	Price     *string         `json:"price,omitempty"`
	Image     *[]ProductImage `json:"image,omitempty"`
}

type Attribute struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type AttributeValue struct {
	ID             uint      `json:"id"`
	Attribute      Attribute `json:"attribute"`
	AttributeValue string    `json:"attribute_value"`
}

type ProductType struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

func NewCategory(c models.Category) Category {
	return Category{Category: c.Name, Slug: c.Slug}
}

func NewCategories(cs []models.Category) []Category {
	out := make([]Category, len(cs))
	for i, c := range cs {
		out[i] = NewCategory(c)
	}
	return out
}

func NewProductImages(images []models.ProductImage) []ProductImage {
	out := make([]ProductImage, len(images))
	for i, img := range images {
		out[i] = ProductImage{
			AlternativeText: img.AlternativeText,
			URL:             img.URL,
			Order:           img.Order,
		}
	}
	return out
}

// Flatten maps attribute name to value, last write wins.
func Flatten(values []models.AttributeValue) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		out[v.Attribute.Name] = v.AttributeValue
	}
	return out
}

func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(pricePlaces)
}

func NewProductLine(l models.ProductLine) ProductLine {
	return ProductLine{
		Price:         FormatPrice(l.Price),
		SKU:           l.SKU,
		StockQty:      l.StockQty,
		Order:         l.Order,
		ProductImage:  NewProductImages(l.ProductImages),
		Specification: Flatten(l.AttributeValues),
	}
}

func NewProduct(p models.Product) Product {
	lines := make([]ProductLine, len(p.ProductLines))
	for i, l := range p.ProductLines {
		lines[i] = NewProductLine(l)
	}
	return Product{
		Name:        p.Name,
		Slug:        p.Slug,
		PID:         p.PID,
		Description: p.Description,
		ProductLine: lines,
		Attribute:   Flatten(p.AttributeValues),
	}
}

func NewProductCategory(p models.Product) ProductCategory {
	out := ProductCategory{
		Name:      p.Name,
		Slug:      p.Slug,
		PID:       p.PID,
		CreatedAt: p.CreatedAt,
	}
	if len(p.ProductLines) > 0 {
		first := p.ProductLines[0]
		price := FormatPrice(first.Price)
		images := NewProductImages(first.ProductImages)
		out.Price = &price
		out.Image = &images
	}
	return out
}

func NewProductCategories(ps []models.Product) []ProductCategory {
	out := make([]ProductCategory, len(ps))
	for i, p := range ps {
		out[i] = NewProductCategory(p)
	}
	return out
}

func NewAttribute(a models.Attribute) Attribute {
	return Attribute{ID: a.ID, Name: a.Name, Description: a.Description}
}

func NewAttributes(as []models.Attribute) []Attribute {
	out := make([]Attribute, len(as))
	for i, a := range as {
		out[i] = NewAttribute(a)
	}
	return out
}

func NewAttributeValue(v models.AttributeValue) AttributeValue {
	return AttributeValue{
		ID:             v.ID,
		Attribute:      NewAttribute(v.Attribute),
		AttributeValue: v.AttributeValue,
	}
}

func NewProductTypes(pts []models.ProductType) []ProductType {
	out := make([]ProductType, len(pts))
	for i, pt := range pts {
		out[i] = ProductType{ID: pt.ID, Name: pt.Name, Attributes: NewAttributes(pt.Attributes)}
	}
	return out
}
