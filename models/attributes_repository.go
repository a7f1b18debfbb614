package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttributesRepository stores attributes, attribute values and product types.
type AttributesRepository struct {
	db *gorm.DB
}

func NewAttributesRepository(db *gorm.DB) *AttributesRepository {
	return &AttributesRepository{db: db}
}

func (r *AttributesRepository) GetAllAttributes(ctx context.Context) ([]Attribute, error) {
	var attributes []Attribute
	if err := r.db.WithContext(ctx).Order("name").Find(&attributes).Error; err != nil {
		return nil, translateError(err)
	}
	return attributes, nil
}

func (r *AttributesRepository) GetAttribute(ctx context.Context, id uint) (*Attribute, error) {
	var attribute Attribute
	if err := r.db.WithContext(ctx).First(&attribute, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &attribute, nil
}

func (r *AttributesRepository) CreateAttribute(ctx context.Context, attribute *Attribute) error {
	return translateError(r.db.WithContext(ctx).Create(attribute).Error)
}

// GetValuesByAttribute lists the values declared for one attribute.
func (r *AttributesRepository) GetValuesByAttribute(ctx context.Context, attributeID uint) ([]AttributeValue, error) {
	var values []AttributeValue
	if err := r.db.WithContext(ctx).
		Preload("Attribute").
		Where("attribute_id = ?", attributeID).
		Order("id").
		Find(&values).Error; err != nil {
		return nil, translateError(err)
	}
	return values, nil
}

// GetAttributeValue loads a value together with its attribute.
func (r *AttributesRepository) GetAttributeValue(ctx context.Context, id uint) (*AttributeValue, error) {
	var value AttributeValue
	if err := r.db.WithContext(ctx).Preload("Attribute").First(&value, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &value, nil
}

func (r *AttributesRepository) CreateAttributeValue(ctx context.Context, value *AttributeValue) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error)
}

func (r *AttributesRepository) GetAllProductTypes(ctx context.Context) ([]ProductType, error) {
	var types []ProductType
	if err := r.db.WithContext(ctx).
		Preload("Attributes", orderByID).
		Order("name").
		Find(&types).Error; err != nil {
		return nil, translateError(err)
	}
	return types, nil
}

func (r *AttributesRepository) GetProductType(ctx context.Context, id uint) (*ProductType, error) {
	var pt ProductType
	if err := r.db.WithContext(ctx).Preload("Attributes", orderByID).First(&pt, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &pt, nil
}

// CreateProductType inserts the type and links the attributes it lists by id.
func (r *AttributesRepository) CreateProductType(ctx context.Context, pt *ProductType) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attributes := pt.Attributes
		if err := tx.Omit(clause.Associations).Create(pt).Error; err != nil {
			return err
		}
		for _, a := range attributes {
			link := ProductTypeAttribute{ProductTypeID: pt.ID, AttributeID: a.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

// DeleteProductType fails with ErrProtected while products or lines use it.
func (r *AttributesRepository) DeleteProductType(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&ProductType{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
