package models

import "time"

// Category represents a node of the catalog tree.
// Name and slug are unique; a parent cannot be deleted while it has children.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:235;uniqueIndex;not null"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null"`
	IsActive  bool      `gorm:"not null;default:false;index"`
	ParentID  *uint     `gorm:"index"`
	Parent    *Category `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt time.Time
}

func (c *Category) TableName() string {
	return "categories"
}

func (c *Category) String() string {
	return c.Name
}

// Validate runs the declarative field checks.
func (c *Category) Validate() error {
	var v validator
	v.required("name", c.Name)
	v.maxLength("name", c.Name, CategoryNameMax)
	v.required("slug", c.Slug)
	v.maxLength("slug", c.Slug, SlugMax)
	return v.err()
}
