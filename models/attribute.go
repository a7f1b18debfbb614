package models

// Attribute is a named property such as "color" or "size".
type Attribute struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
}

func (a *Attribute) TableName() string {
	return "attributes"
}

func (a *Attribute) String() string {
	return a.Name
}

func (a *Attribute) Validate() error {
	var v validator
	v.required("name", a.Name)
	v.maxLength("name", a.Name, NameMax)
	return v.err()
}

// AttributeValue is a concrete value of an Attribute, e.g. "red" for "color".
type AttributeValue struct {
	ID             uint      `gorm:"primaryKey"`
	AttributeValue string    `gorm:"column:attribute_value;size:100;not null"`
	AttributeID    uint      `gorm:"not null;index"`
	Attribute      Attribute `gorm:"foreignKey:AttributeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (av *AttributeValue) TableName() string {
	return "attribute_values"
}

// String renders "<attribute>-<value>".
func (av *AttributeValue) String() string {
	return av.Attribute.Name + "-" + av.AttributeValue
}

func (av *AttributeValue) Validate() error {
	var v validator
	v.required("attribute_value", av.AttributeValue)
	v.maxLength("attribute_value", av.AttributeValue, AttributeValueMax)
	if av.AttributeID == 0 && av.Attribute.ID == 0 {
		v.add("attribute", msgRequired)
	}
	return v.err()
}

// attributeID prefers the loaded association over the raw key.
func (av *AttributeValue) attributeID() uint {
	if av.Attribute.ID != 0 {
		return av.Attribute.ID
	}
	return av.AttributeID
}

// CleanAttributeValue rejects candidate when attached already holds a
// different value of the same attribute. Re-attaching the identical value
// is accepted.
func CleanAttributeValue(attached []AttributeValue, candidate AttributeValue) error {
	for _, existing := range attached {
		if candidate.ID != 0 && existing.ID == candidate.ID {
			return nil
		}
	}
	for _, existing := range attached {
		if existing.attributeID() == candidate.attributeID() {
			return &ValidationError{Errors: []FieldError{{Field: "attribute_value", Message: msgDuplicateAttribute}}}
		}
	}
	return nil
}

// ProductLineAttributeValue links a product line to one attribute value.
// Only the exact pair is unique in storage; one value per attribute is a
// validation rule (see CleanAttributeValue).
type ProductLineAttributeValue struct {
	ProductLineID    uint `gorm:"primaryKey"`
	AttributeValueID uint `gorm:"primaryKey"`
}

func (ProductLineAttributeValue) TableName() string {
	return "product_line_attribute_values"
}

// ProductAttributeValue links a product to one attribute value.
type ProductAttributeValue struct {
	ProductID        uint `gorm:"primaryKey"`
	AttributeValueID uint `gorm:"primaryKey"`
}

func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// ProductTypeAttribute links a product type to the attributes it declares.
type ProductTypeAttribute struct {
	ProductTypeID uint `gorm:"primaryKey"`
	AttributeID   uint `gorm:"primaryKey"`
}

func (ProductTypeAttribute) TableName() string {
	return "product_type_attributes"
}
