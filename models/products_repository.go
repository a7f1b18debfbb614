package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

type ProductFilters struct {
	CategorySlug string
	ActiveOnly   bool
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// listingLines preloads what the category view needs: active lines by order
// and their images.
func listingLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ProductLines", func(tx *gorm.DB) *gorm.DB {
			return tx.Scopes(Active, byOrder)
		}).
		Preload("ProductLines.ProductImages", byOrder)
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	// Filter
	if filters.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filters.CategorySlug)
	}
	if filters.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	// Apply pagination
	if err := query.
		Scopes(listingLines).
		Order("products.created_at DESC, products.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return products, total, nil
}

// GetByCategorySlug lists the products of a category for the category view.
func (r *ProductsRepository) GetByCategorySlug(ctx context.Context, slug string, activeOnly bool) ([]Product, error) {
	products, _, err := r.GetFilteredProducts(ctx, 0, -1, ProductFilters{CategorySlug: slug, ActiveOnly: activeOnly})
	return products, err
}

// GetBySlug loads a product with the full tree the detail view flattens:
// lines, their images and attribute values, and the product's own values.
func (r *ProductsRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*Product, error) {
	var product Product
	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("ProductType").
		Preload("ProductLines", func(tx *gorm.DB) *gorm.DB {
			if activeOnly {
				tx = tx.Scopes(Active)
			}
			return tx.Scopes(byOrder)
		}).
		Preload("ProductLines.ProductImages", byOrder).
		Preload("ProductLines.AttributeValues", orderByID).
		Preload("ProductLines.AttributeValues.Attribute").
		Preload("AttributeValues", orderByID).
		Preload("AttributeValues.Attribute").
		Where("slug = ?", slug)
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (r *ProductsRepository) CountProducts(ctx context.Context, activeOnly bool) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&Product{})
	if activeOnly {
		query = query.Scopes(Active)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// CreateProduct inserts the row without validating it.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *Product) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

// DeleteProduct fails with ErrProtected while product lines reference it.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, product *Product) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, product.ID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FullCleanProduct runs field validation and checks that the category and
// product type exist.
func (r *ProductsRepository) FullCleanProduct(ctx context.Context, product *Product) error {
	fieldErr := product.Validate()

	refErr := checkReferences(ctx, r.db,
		reference{field: "category", model: &Category{}, id: product.CategoryID},
		reference{field: "product_type", model: &ProductType{}, id: product.ProductTypeID},
	)
	return JoinValidation(fieldErr, refErr)
}

// AttachAttributeValue links a value to a product. Linking the same pair
// twice is a no-op.
func (r *ProductsRepository) AttachAttributeValue(ctx context.Context, productID, valueID uint) error {
	link := ProductAttributeValue{ProductID: productID, AttributeValueID: valueID}
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error)
}

// FullCleanAttributeValue checks that the product does not hold another
// value of the same attribute.
func (r *ProductsRepository) FullCleanAttributeValue(ctx context.Context, productID uint, value AttributeValue) error {
	var attached []AttributeValue
	if err := r.db.WithContext(ctx).
		Joins("JOIN product_attribute_values pav ON pav.attribute_value_id = attribute_values.id").
		Where("pav.product_id = ?", productID).
		Find(&attached).Error; err != nil {
		return translateError(err)
	}
	return CleanAttributeValue(attached, value)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// reference is a foreign key checked before insert.
type reference struct {
	field string
	model any
	id    uint
}

// checkReferences reports every non-zero key whose row does not exist.
// Zero keys are left to the required-field check.
func checkReferences(ctx context.Context, db *gorm.DB, refs ...reference) error {
	var v validator
	for _, ref := range refs {
		if ref.id == 0 {
			continue
		}
		var n int64
		if err := db.WithContext(ctx).Model(ref.model).Where("id = ?", ref.id).Count(&n).Error; err != nil {
			return translateError(err)
		}
		if n == 0 {
			v.add(ref.field, fmt.Sprintf(msgDoesNotExistFormat, strings.ReplaceAll(ref.field, "_", " "), ref.id))
		}
	}
	return v.err()
}

// JoinValidation merges the field errors of several validation passes.
func JoinValidation(errs ...error) error {
	var merged ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		merged.Errors = append(merged.Errors, ve.Errors...)
	}
	if len(merged.Errors) == 0 {
		return nil
	}
	return &merged
}
