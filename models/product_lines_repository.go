package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductLinesRepository stores product lines, their images and their
// attribute values.
type ProductLinesRepository struct {
	db *gorm.DB
}

func NewProductLinesRepository(db *gorm.DB) *ProductLinesRepository {
	return &ProductLinesRepository{db: db}
}

func (r *ProductLinesRepository) GetProductLines(ctx context.Context, productID uint, activeOnly bool) ([]ProductLine, error) {
	var lines []ProductLine
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.Scopes(byOrder).Find(&lines).Error; err != nil {
		return nil, translateError(err)
	}
	return lines, nil
}

func (r *ProductLinesRepository) CountProductLines(ctx context.Context, activeOnly bool) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&ProductLine{})
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

func (r *ProductLinesRepository) GetByID(ctx context.Context, id uint) (*ProductLine, error) {
	var line ProductLine
	if err := r.db.WithContext(ctx).
		Preload("ProductImages", byOrder).
		Preload("AttributeValues.Attribute").
		First(&line, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &line, nil
}

// CreateProductLine inserts the row without validating it, so a caller
// that skips FullCleanProductLine can store a duplicate order.
func (r *ProductLinesRepository) CreateProductLine(ctx context.Context, line *ProductLine) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error)
}

// FullCleanProductLine runs field validation, the reference checks and the
// per-product order check.
func (r *ProductLinesRepository) FullCleanProductLine(ctx context.Context, line *ProductLine) error {
	fieldErr := line.Validate()

	refErr := checkReferences(ctx, r.db,
		reference{field: "product", model: &Product{}, id: line.ProductID},
		reference{field: "product_type", model: &ProductType{}, id: line.ProductTypeID},
	)
	if refErr != nil && !errors.As(refErr, new(*ValidationError)) {
		return refErr
	}

	siblings, err := r.GetProductLines(ctx, line.ProductID, false)
	if err != nil {
		return err
	}
	return JoinValidation(fieldErr, refErr, line.Clean(siblings))
}

func (r *ProductLinesRepository) CreateProductImage(ctx context.Context, image *ProductImage) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(image).Error)
}

// FullCleanProductImage runs field validation and the per-line order check.
func (r *ProductLinesRepository) FullCleanProductImage(ctx context.Context, image *ProductImage) error {
	fieldErr := image.Validate()

	var siblings []ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_line_id = ?", image.ProductLineID).
		Find(&siblings).Error; err != nil {
		return translateError(err)
	}
	return JoinValidation(fieldErr, image.Clean(siblings))
}

// AttachAttributeValue links a value to a product line. Linking the same
// pair twice is a no-op; a second value of the same attribute is only
// rejected by FullCleanAttributeValue.
func (r *ProductLinesRepository) AttachAttributeValue(ctx context.Context, lineID, valueID uint) error {
	link := ProductLineAttributeValue{ProductLineID: lineID, AttributeValueID: valueID}
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error)
}

// FullCleanAttributeValue checks that the line does not hold another value
// of the same attribute.
func (r *ProductLinesRepository) FullCleanAttributeValue(ctx context.Context, lineID uint, value AttributeValue) error {
	var attached []AttributeValue
	if err := r.db.WithContext(ctx).
		Joins("JOIN product_line_attribute_values plav ON plav.attribute_value_id = attribute_values.id").
		Where("plav.product_line_id = ?", lineID).
		Find(&attached).Error; err != nil {
		return translateError(err)
	}
	return CleanAttributeValue(attached, value)
}
