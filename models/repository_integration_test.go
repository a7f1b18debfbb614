//go:build integration
// +build integration

package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB starts a PostgreSQL container and returns a migrated connection.
func setupTestDB(t *testing.T, driver string) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(DBOptions{DSN: dsn, Driver: driver, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	return db
}

// fixtures builds rows the way test factories would, numbering names so
// unique columns never collide.
type fixtures struct {
	t   *testing.T
	db  *gorm.DB
	seq int
}

func (f *fixtures) next() int {
	f.seq++
	return f.seq
}

func (f *fixtures) category(mutate ...func(*Category)) *Category {
	n := f.next()
	c := &Category{Name: fmt.Sprintf("category_%d", n), Slug: fmt.Sprintf("category-%d", n)}
	for _, m := range mutate {
		m(c)
	}
	require.NoError(f.t, NewCategoriesRepository(f.db).CreateCategory(context.Background(), c))
	return c
}

func (f *fixtures) productType() *ProductType {
	pt := &ProductType{Name: fmt.Sprintf("type_%d", f.next())}
	require.NoError(f.t, NewAttributesRepository(f.db).CreateProductType(context.Background(), pt))
	return pt
}

func (f *fixtures) product(mutate ...func(*Product)) *Product {
	n := f.next()
	p := &Product{
		Name:        fmt.Sprintf("product_%d", n),
		Slug:        fmt.Sprintf("product-%d", n),
		PID:         NewPID(),
		Description: "test description",
	}
	for _, m := range mutate {
		m(p)
	}
	if p.CategoryID == 0 {
		p.CategoryID = f.category().ID
	}
	if p.ProductTypeID == 0 {
		p.ProductTypeID = f.productType().ID
	}
	require.NoError(f.t, NewProductsRepository(f.db).CreateProduct(context.Background(), p))
	return p
}

func (f *fixtures) productLine(mutate ...func(*ProductLine)) *ProductLine {
	l := &ProductLine{
		Price:    decimal.RequireFromString("10.00"),
		SKU:      fmt.Sprintf("SKU%d", f.next()),
		StockQty: 10,
		Order:    f.seq,
		IsActive: true,
	}
	for _, m := range mutate {
		m(l)
	}
	if l.ProductID == 0 {
		l.ProductID = f.product().ID
	}
	if l.ProductTypeID == 0 {
		l.ProductTypeID = f.productType().ID
	}
	require.NoError(f.t, NewProductLinesRepository(f.db).CreateProductLine(context.Background(), l))
	return l
}

func (f *fixtures) attributeValue(attribute *Attribute, value string) *AttributeValue {
	av := &AttributeValue{AttributeValue: value, AttributeID: attribute.ID, Attribute: *attribute}
	require.NoError(f.t, NewAttributesRepository(f.db).CreateAttributeValue(context.Background(), av))
	return av
}

func (f *fixtures) attribute(name string) *Attribute {
	a := &Attribute{Name: name}
	require.NoError(f.t, NewAttributesRepository(f.db).CreateAttribute(context.Background(), a))
	return a
}

func TestRepositoriesIntegration(t *testing.T) {
	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			f := &fixtures{t: t, db: db}
			ctx := context.Background()

			categories := NewCategoriesRepository(db)
			products := NewProductsRepository(db)
			lines := NewProductLinesRepository(db)
			attributes := NewAttributesRepository(db)

			t.Run("Category is_active defaults to false", func(t *testing.T) {
				c := f.category()
				got, err := categories.GetBySlug(ctx, c.Slug)
				require.NoError(t, err)
				assert.False(t, got.IsActive)
				assert.Nil(t, got.ParentID)
			})

			t.Run("Category name and slug are unique", func(t *testing.T) {
				c := f.category()
				err := categories.CreateCategory(ctx, &Category{Name: c.Name, Slug: "other-slug"})
				assert.ErrorIs(t, err, ErrDuplicate)
				err = categories.CreateCategory(ctx, &Category{Name: "other-name", Slug: c.Slug})
				assert.ErrorIs(t, err, ErrIntegrity)
			})

			t.Run("Over-long category name fails validation", func(t *testing.T) {
				c := &Category{Name: "ok", Slug: "x"}
				for i := 0; i < 24; i++ {
					c.Name += "0123456789"
				}
				err := c.Validate()
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.True(t, ve.Has("name"))
			})

			t.Run("Parent category is delete protected", func(t *testing.T) {
				parent := f.category()
				f.category(func(c *Category) { c.ParentID = &parent.ID })
				err := categories.DeleteCategory(ctx, parent)
				assert.ErrorIs(t, err, ErrProtected)
			})

			t.Run("Category with products is delete protected", func(t *testing.T) {
				c := f.category()
				f.product(func(p *Product) { p.CategoryID = c.ID })
				assert.ErrorIs(t, categories.DeleteCategory(ctx, c), ErrIntegrity)
			})

			t.Run("Unreferenced category can be deleted", func(t *testing.T) {
				c := f.category()
				require.NoError(t, categories.DeleteCategory(ctx, c))
				_, err := categories.GetBySlug(ctx, c.Slug)
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("Product type is delete protected", func(t *testing.T) {
				pt := f.productType()
				f.product(func(p *Product) { p.ProductTypeID = pt.ID })
				assert.ErrorIs(t, attributes.DeleteProductType(ctx, pt.ID), ErrProtected)

				pt2 := f.productType()
				f.productLine(func(l *ProductLine) { l.ProductTypeID = pt2.ID })
				assert.ErrorIs(t, attributes.DeleteProductType(ctx, pt2.ID), ErrProtected)
			})

			t.Run("Product with lines is delete protected", func(t *testing.T) {
				p := f.product()
				f.productLine(func(l *ProductLine) { l.ProductID = p.ID })
				assert.ErrorIs(t, products.DeleteProduct(ctx, p), ErrProtected)
			})

			t.Run("Active only counts", func(t *testing.T) {
				allBefore, err := categories.CountCategories(ctx, false)
				require.NoError(t, err)
				activeBefore, err := categories.CountCategories(ctx, true)
				require.NoError(t, err)

				f.category(func(c *Category) { c.IsActive = true })
				f.category()

				all, err := categories.CountCategories(ctx, false)
				require.NoError(t, err)
				active, err := categories.CountCategories(ctx, true)
				require.NoError(t, err)
				assert.Equal(t, allBefore+2, all)
				assert.Equal(t, activeBefore+1, active)

				pBefore, err := products.CountProducts(ctx, true)
				require.NoError(t, err)
				f.product(func(p *Product) { p.IsActive = true })
				f.product()
				pAfter, err := products.CountProducts(ctx, true)
				require.NoError(t, err)
				assert.Equal(t, pBefore+1, pAfter)

				lBefore, err := lines.CountProductLines(ctx, false)
				require.NoError(t, err)
				f.productLine(func(l *ProductLine) { l.IsActive = false })
				lAfter, err := lines.CountProductLines(ctx, false)
				require.NoError(t, err)
				assert.Equal(t, lBefore+1, lAfter)
			})

			t.Run("Duplicate line order fails validation only", func(t *testing.T) {
				p := f.product()
				f.productLine(func(l *ProductLine) { l.ProductID = p.ID; l.Order = 1 })

				dup := &ProductLine{
					Price: decimal.RequireFromString("5.00"), SKU: "DUP", Order: 1,
					ProductID: p.ID, ProductTypeID: p.ProductTypeID,
				}
				err := lines.FullCleanProductLine(ctx, dup)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.True(t, ve.Has("order"))

				// Storage accepts it when the validation pass is skipped.
				require.NoError(t, lines.CreateProductLine(ctx, dup))
			})

			t.Run("Duplicate image order fails validation", func(t *testing.T) {
				l := f.productLine()
				img := &ProductImage{AlternativeText: "a", URL: "https://img/1.png", Order: 1, ProductLineID: l.ID}
				require.NoError(t, lines.FullCleanProductImage(ctx, img))
				require.NoError(t, lines.CreateProductImage(ctx, img))

				dup := &ProductImage{AlternativeText: "b", URL: "https://img/2.png", Order: 1, ProductLineID: l.ID}
				err := lines.FullCleanProductImage(ctx, dup)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.True(t, ve.Has("order"))
			})

			t.Run("Over-precision price fails validation", func(t *testing.T) {
				l := &ProductLine{Price: decimal.RequireFromString("1.001"), SKU: "PREC", Order: 99}
				err := l.Validate()
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.True(t, ve.Has("price"))
			})

			t.Run("Unknown references fail validation", func(t *testing.T) {
				p := &Product{Name: "ghost", Slug: "ghost", PID: NewPID(), CategoryID: 999999, ProductTypeID: 999999}
				err := products.FullCleanProduct(ctx, p)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, []string{"category", "product_type"}, ve.FieldNames())

				owner := f.product()
				l := &ProductLine{
					Price: decimal.RequireFromString("5.00"), SKU: "GHOST", Order: 1,
					ProductID: owner.ID, ProductTypeID: 999999,
				}
				err = lines.FullCleanProductLine(ctx, l)
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, []string{"product_type"}, ve.FieldNames())
			})

			t.Run("Second value of an attribute on a line fails validation", func(t *testing.T) {
				color := f.attribute("shoe-color")
				red := f.attributeValue(color, "red")
				blue := f.attributeValue(color, "blue")
				l := f.productLine()

				require.NoError(t, lines.FullCleanAttributeValue(ctx, l.ID, *red))
				require.NoError(t, lines.AttachAttributeValue(ctx, l.ID, red.ID))

				// Same pair again is accepted and idempotent.
				require.NoError(t, lines.FullCleanAttributeValue(ctx, l.ID, *red))
				require.NoError(t, lines.AttachAttributeValue(ctx, l.ID, red.ID))

				err := lines.FullCleanAttributeValue(ctx, l.ID, *blue)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.True(t, ve.Has("attribute_value"))

				// Skipping validation lets the inconsistent row in.
				require.NoError(t, lines.AttachAttributeValue(ctx, l.ID, blue.ID))
				got, err := lines.GetByID(ctx, l.ID)
				require.NoError(t, err)
				assert.Len(t, got.AttributeValues, 2)
			})

			t.Run("Detail preload tree", func(t *testing.T) {
				size := f.attribute("size")
				material := f.attribute("material")
				large := f.attributeValue(size, "L")
				leather := f.attributeValue(material, "leather")

				p := f.product(func(p *Product) { p.IsActive = true })
				second := f.productLine(func(l *ProductLine) { l.ProductID = p.ID; l.Order = 2 })
				first := f.productLine(func(l *ProductLine) { l.ProductID = p.ID; l.Order = 1 })
				f.productLine(func(l *ProductLine) { l.ProductID = p.ID; l.Order = 3; l.IsActive = false })

				require.NoError(t, lines.AttachAttributeValue(ctx, first.ID, large.ID))
				require.NoError(t, products.AttachAttributeValue(ctx, p.ID, leather.ID))
				require.NoError(t, lines.CreateProductImage(ctx, &ProductImage{
					AlternativeText: "front", URL: "https://img/front.png", Order: 1, ProductLineID: first.ID,
				}))

				got, err := products.GetBySlug(ctx, p.Slug, true)
				require.NoError(t, err)
				require.Len(t, got.ProductLines, 2)
				assert.Equal(t, first.ID, got.ProductLines[0].ID)
				assert.Equal(t, second.ID, got.ProductLines[1].ID)
				require.Len(t, got.ProductLines[0].AttributeValues, 1)
				assert.Equal(t, "size", got.ProductLines[0].AttributeValues[0].Attribute.Name)
				require.Len(t, got.ProductLines[0].ProductImages, 1)
				require.Len(t, got.AttributeValues, 1)
				assert.Equal(t, "material", got.AttributeValues[0].Attribute.Name)
			})

			t.Run("Category listing", func(t *testing.T) {
				c := f.category(func(c *Category) { c.IsActive = true })
				withLine := f.product(func(p *Product) { p.CategoryID = c.ID; p.IsActive = true })
				f.productLine(func(l *ProductLine) { l.ProductID = withLine.ID })
				f.product(func(p *Product) { p.CategoryID = c.ID; p.IsActive = true })
				f.product(func(p *Product) { p.CategoryID = c.ID })

				got, err := products.GetByCategorySlug(ctx, c.Slug, true)
				require.NoError(t, err)
				assert.Len(t, got, 2)

				page, total, err := products.GetFilteredProducts(ctx, 0, 1, ProductFilters{CategorySlug: c.Slug})
				require.NoError(t, err)
				assert.Equal(t, int64(3), total)
				assert.Len(t, page, 1)
			})
		})
	}
}
