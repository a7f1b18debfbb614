package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		wantNil       bool
		wantNotFound  bool
		wantIntegrity bool
		wantDuplicate bool
		wantProtected bool
	}{
		{name: "Nil", err: nil, wantNil: true},
		{name: "Record not found", err: gorm.ErrRecordNotFound, wantNotFound: true},
		{
			name:          "pgx unique violation",
			err:           fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_name"}),
			wantIntegrity: true,
			wantDuplicate: true,
		},
		{
			name:          "pgx foreign key violation",
			err:           &pgconn.PgError{Code: "23503", ConstraintName: "fk_categories_parent"},
			wantIntegrity: true,
			wantProtected: true,
		},
		{
			name:          "pgx not null violation",
			err:           &pgconn.PgError{Code: "23502"},
			wantIntegrity: true,
		},
		{
			name:          "lib/pq unique violation",
			err:           &pq.Error{Code: "23505", Constraint: "idx_categories_slug"},
			wantIntegrity: true,
			wantDuplicate: true,
		},
		{
			name:          "lib/pq foreign key violation",
			err:           &pq.Error{Code: "23503"},
			wantIntegrity: true,
			wantProtected: true,
		},
		{
			name:          "gorm translated duplicate",
			err:           gorm.ErrDuplicatedKey,
			wantIntegrity: true,
			wantDuplicate: true,
		},
		{
			name:          "gorm translated foreign key",
			err:           gorm.ErrForeignKeyViolated,
			wantIntegrity: true,
			wantProtected: true,
		},
		{name: "Other pg error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "Plain error", err: errors.New("connection refused")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.err)
			if tc.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.Error(t, got)
			assert.Equal(t, tc.wantNotFound, errors.Is(got, ErrNotFound))
			assert.Equal(t, tc.wantIntegrity, errors.Is(got, ErrIntegrity))
			assert.Equal(t, tc.wantDuplicate, errors.Is(got, ErrDuplicate))
			assert.Equal(t, tc.wantProtected, errors.Is(got, ErrProtected))
		})
	}
}

func TestIntegrityErrorMessage(t *testing.T) {
	err := &IntegrityError{Code: "23503", Constraint: "fk_products_category", Err: errors.New("boom")}
	assert.Equal(t, "integrity error (23503 on fk_products_category): boom", err.Error())
	assert.Equal(t, "boom", errors.Unwrap(err).Error())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "sku", Message: "too long"},
		{Field: "order", Message: "Duplicate value."},
	}}
	assert.Equal(t, "validation failed: sku: too long; order: Duplicate value.", err.Error())
	assert.Equal(t, []string{"order", "sku"}, err.FieldNames())
}
