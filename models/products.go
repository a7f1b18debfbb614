package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType groups products and product lines that share a set of attributes.
type ProductType struct {
	ID         uint        `gorm:"primaryKey"`
	Name       string      `gorm:"size:100;not null"`
	Attributes []Attribute `gorm:"many2many:product_type_attributes;constraint:OnDelete:CASCADE"`
}

func (pt *ProductType) TableName() string {
	return "product_types"
}

func (pt *ProductType) String() string {
	return pt.Name
}

func (pt *ProductType) Validate() error {
	var v validator
	v.required("name", pt.Name)
	v.maxLength("name", pt.Name, NameMax)
	return v.err()
}

// Product represents a product in the catalog.
// Its category and product type cannot be deleted while it references them.
type Product struct {
	ID              uint             `gorm:"primaryKey"`
	Name            string           `gorm:"size:235;not null"`
	Slug            string           `gorm:"size:255;not null;index"`
	PID             string           `gorm:"column:pid;size:10;uniqueIndex;not null"`
	Description     string           `gorm:"type:text"`
	IsDigital       bool             `gorm:"not null;default:false"`
	IsActive        bool             `gorm:"not null;default:false;index"`
	CategoryID      uint             `gorm:"not null;index"`
	Category        Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ProductTypeID   uint             `gorm:"not null;index"`
	ProductType     ProductType      `gorm:"foreignKey:ProductTypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ProductLines    []ProductLine    `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AttributeValues []AttributeValue `gorm:"many2many:product_attribute_values;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) String() string {
	return p.Name
}

func (p *Product) Validate() error {
	var v validator
	v.required("name", p.Name)
	v.maxLength("name", p.Name, ProductNameMax)
	v.required("slug", p.Slug)
	v.maxLength("slug", p.Slug, SlugMax)
	v.required("pid", p.PID)
	v.maxLength("pid", p.PID, PIDMax)
	if p.CategoryID == 0 {
		v.add("category", msgRequired)
	}
	if p.ProductTypeID == 0 {
		v.add("product_type", msgRequired)
	}
	return v.err()
}

// NewPID returns a random public identifier that fits the pid column.
func NewPID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:PIDMax])
}

// ProductLine is a sellable variant (SKU) of a Product.
type ProductLine struct {
	ID              uint             `gorm:"primaryKey"`
	Price           decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	SKU             string           `gorm:"column:sku;size:10;not null"`
	StockQty        int              `gorm:"not null;default:0"`
	Order           int              `gorm:"column:order;not null"`
	IsActive        bool             `gorm:"not null;default:false;index"`
	ProductID       uint             `gorm:"not null;index"`
	Product         *Product         `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ProductTypeID   uint             `gorm:"not null;index"`
	ProductType     *ProductType     `gorm:"foreignKey:ProductTypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ProductImages   []ProductImage   `gorm:"foreignKey:ProductLineID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AttributeValues []AttributeValue `gorm:"many2many:product_line_attribute_values;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
}

func (pl *ProductLine) TableName() string {
	return "product_lines"
}

func (pl *ProductLine) String() string {
	return pl.SKU
}

func (pl *ProductLine) Validate() error {
	var v validator
	v.decimal("price", pl.Price, PriceMaxDigits, PriceDecimalPlaces)
	v.required("sku", pl.SKU)
	v.maxLength("sku", pl.SKU, SKUMax)
	v.nonNegative("stock_qty", pl.StockQty)
	v.nonNegative("order", pl.Order)
	if pl.ProductID == 0 {
		v.add("product", msgRequired)
	}
	if pl.ProductTypeID == 0 {
		v.add("product_type", msgRequired)
	}
	return v.err()
}

// Clean checks that no sibling line of the same product uses the same order.
func (pl *ProductLine) Clean(siblings []ProductLine) error {
	for _, s := range siblings {
		if s.ProductID != pl.ProductID || (pl.ID != 0 && s.ID == pl.ID) {
			continue
		}
		if s.Order == pl.Order {
			return &ValidationError{Errors: []FieldError{{Field: "order", Message: msgDuplicateOrder}}}
		}
	}
	return nil
}

// ProductImage is an image of a product line.
type ProductImage struct {
	ID              uint         `gorm:"primaryKey"`
	AlternativeText string       `gorm:"size:100;not null"`
	URL             string       `gorm:"column:url;type:text;not null"`
	Order           int          `gorm:"column:order;not null"`
	ProductLineID   uint         `gorm:"not null;index"`
	ProductLine     *ProductLine `gorm:"foreignKey:ProductLineID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (pi *ProductImage) TableName() string {
	return "product_images"
}

// String renders "<sku>_img" when the product line is loaded.
func (pi *ProductImage) String() string {
	if pi.ProductLine == nil {
		return "_img"
	}
	return pi.ProductLine.SKU + "_img"
}

func (pi *ProductImage) Validate() error {
	var v validator
	v.required("alternative_text", pi.AlternativeText)
	v.maxLength("alternative_text", pi.AlternativeText, AlternativeTextMax)
	v.required("url", pi.URL)
	v.nonNegative("order", pi.Order)
	if pi.ProductLineID == 0 {
		v.add("product_line", msgRequired)
	}
	return v.err()
}

// Clean checks that no sibling image of the same product line uses the same order.
func (pi *ProductImage) Clean(siblings []ProductImage) error {
	for _, s := range siblings {
		if s.ProductLineID != pi.ProductLineID || (pi.ID != 0 && s.ID == pi.ID) {
			continue
		}
		if s.Order == pi.Order {
			return &ValidationError{Errors: []FieldError{{Field: "order", Message: msgDuplicateOrder}}}
		}
	}
	return nil
}
